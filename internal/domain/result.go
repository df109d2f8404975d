package domain

// ContentTypePDF tags every successful RenderResult.
const ContentTypePDF = "application/pdf"

// RenderResult is the produced document. It lives only as long as the response
// it is attached to.
type RenderResult struct {
	Data        []byte
	ContentType string
}

// Len returns the size of the document in bytes.
func (r *RenderResult) Len() int {
	return len(r.Data)
}
