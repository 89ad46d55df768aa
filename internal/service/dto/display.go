package dto

// Where the projector browser should point. QRCode is the path of a PNG
// that encodes URL.
type DisplayLink struct {
	URL    string `json:"url"`
	QRCode string `json:"qr_code"`
}
