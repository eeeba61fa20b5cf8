package types

// VRFTranscriptItem is one labelled input bound into a VRF transcript.
// Exactly one of Bytes and U64 is set.
type VRFTranscriptItem struct {
	Label string
	Bytes []byte
	U64   *uint64
}

// VRFTranscriptData describes the transcript a VRF output commits to.
type VRFTranscriptData struct {
	Label string
	Items []VRFTranscriptItem
}

const (
	// VRFOutputLen is the size of a VRF output.
	VRFOutputLen = 32
	// VRFProofLen is the size of a VRF proof.
	VRFProofLen = 64
)

// VRFSignature is a VRF output together with the proof that it was produced
// from the transcript by the holder of the secret key.
type VRFSignature struct {
	Output [VRFOutputLen]byte
	Proof  [VRFProofLen]byte
}
