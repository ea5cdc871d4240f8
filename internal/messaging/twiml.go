package messaging

import (
	"bytes"
	"encoding/xml"
)

const twimlHeader = `<?xml version="1.0" encoding="UTF-8"?>`

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message,omitempty"`
}

// RenderTwiML builds the inline reply document returned synchronously to
// Twilio. An empty body renders an empty <Response/>, which is how a reply
// already delivered out-of-band is acknowledged.
func RenderTwiML(body string) string {
	var buf bytes.Buffer
	buf.WriteString(twimlHeader)
	// Marshalling a fixed struct cannot fail; encode through the encoder
	// anyway so message bodies are XML-escaped.
	_ = xml.NewEncoder(&buf).Encode(twimlResponse{Message: body})
	return buf.String()
}
