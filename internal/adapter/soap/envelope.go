package soap

import (
	"encoding/xml"
	"fmt"
)

const envelopeNamespace = "http://schemas.xmlsoap.org/soap/envelope/"

type requestBody struct {
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Body"`
	Content interface{}
}

type requestEnvelope struct {
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Body    requestBody
}

// Fault is a SOAP 1.1 fault.
type Fault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
	Detail string `xml:"detail"`
}

func (f *Fault) Error() string {
	return fmt.Sprintf("soap fault %s: %s", f.Code, f.String)
}

type responseEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Fault   *Fault `xml:"Fault"`
		Content []byte `xml:",innerxml"`
	} `xml:"Body"`
}

func encodeEnvelope(content interface{}) ([]byte, error) {
	raw, err := xml.Marshal(requestEnvelope{Body: requestBody{Content: content}})
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), raw...), nil
}
