package testing

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"
	"github.com/onsi/gomega"
)

type RequestModifier func(r *http.Request)

type RequestModifiers []RequestModifier

func (r *RequestModifiers) Add(mods ...RequestModifier) {
	*r = append(*r, mods...)
}

type RequestFactory struct {
	Method  string
	Target  string
	JSONObj interface{}
	Mods    RequestModifiers
}

func (r RequestFactory) MakeFake() *http.Request {
	var body io.Reader

	if r.JSONObj != nil {
		buf := &bytes.Buffer{}
		err := json.NewEncoder(buf).Encode(r.JSONObj)
		gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())

		body = buf
	}

	request := httptest.NewRequest(r.Method, r.Target, body)

	isJSONBody := body != nil
	if isJSONBody {
		request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	for _, mod := range r.Mods {
		mod(request)
	}

	return request
}

// MultipartRequestFactory builds the file upload requests that the
// separation endpoint accepts. Leaving FileName empty omits the file
// part entirely, for exercising the no-file case
type MultipartRequestFactory struct {
	Target       string
	FileName     string
	FileContents []byte
	Fields       map[string]string
	Mods         RequestModifiers
}

func (m MultipartRequestFactory) MakeFake() *http.Request {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if m.FileName != "" {
		filePart := ExpectSuccess(writer.CreateFormFile("file", m.FileName))
		_ = ExpectSuccess(filePart.Write(m.FileContents))
	}

	for key, value := range m.Fields {
		err := writer.WriteField(key, value)
		gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())
	}

	err := writer.Close()
	gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())

	request := httptest.NewRequest("POST", m.Target, body)
	request.Header.Set(echo.HeaderContentType, writer.FormDataContentType())

	for _, mod := range m.Mods {
		mod(request)
	}

	return request
}
