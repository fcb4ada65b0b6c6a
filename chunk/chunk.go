package chunk

// Chunk is an opaque, immutable byte slice paired with the metadata needed
// to re-embed it inside a reconstructed parent frame.
type Chunk struct {
	Bytes []byte
	Meta  Meta
}

// Stored pairs a chunk's metadata with the store-assigned path identifying
// it; it does not carry the chunk's bytes.
type Stored struct {
	Path string
	Meta Meta
}
