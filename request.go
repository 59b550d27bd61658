package fieldset

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

///////////////////////////////////////////////////////////////////////////////
// RequestDecoder
///////////////////////////////////////////////////////////////////////////////

// RequestDecoder extracts selection arguments from an inbound HTTP request.
// A value is looked up in the query string first; for requests carrying an
// application/json body, a top-level member of the same name is accepted as
// a fallback, so POST-style search endpoints can send selections in the
// body.
//
// The decoder caches the parsed query and body per request to avoid
// re-parsing when both selection parameters are resolved. The body is
// restored on the request after reading, so the wrapped handler can still
// consume it.
type RequestDecoder struct {
	request *http.Request

	queryParams map[string][]string
	queryOnce   sync.Once

	jsonBody  gjson.Result
	bodyOnce  sync.Once
	bodyError error
}

func NewRequestDecoder(request *http.Request) *RequestDecoder {
	return &RequestDecoder{request: request}
}

// Argument resolves a single named argument: first query parameter, then
// JSON body member. Reports ok=false when neither carries the name.
func (rd *RequestDecoder) Argument(name string) (string, bool, error) {
	if value, ok := rd.queryValue(name); ok {
		return value, true, nil
	}
	return rd.bodyValue(name)
}

// Selection resolves and validates one selection argument through the
// given parser. An absent argument parses as the empty string, which the
// parser maps to "use defaults".
func (rd *RequestDecoder) Selection(name string, parser *SelectionParser) (StringSet, error) {
	raw, ok, err := rd.Argument(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		raw = ""
	}
	return parser.Parse(raw)
}

func (rd *RequestDecoder) queryValue(name string) (string, bool) {
	rd.queryOnce.Do(func() {
		rd.queryParams = rd.request.URL.Query()
	})

	values, exists := rd.queryParams[name]
	if !exists || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (rd *RequestDecoder) bodyValue(name string) (string, bool, error) {
	body, err := rd.getJSONBody()
	if err != nil {
		return "", false, err
	}

	result := body.Get(name)
	if !result.Exists() {
		return "", false, nil
	}
	return result.String(), true, nil
}

func (rd *RequestDecoder) getJSONBody() (gjson.Result, error) {
	rd.bodyOnce.Do(func() {
		contentType := rd.request.Header.Get("Content-Type")
		if mime, _, found := strings.Cut(contentType, ContentTypeDelimiter); found {
			contentType = mime
		}
		if strings.TrimSpace(contentType) != ContentTypeApplicationJSON {
			rd.jsonBody = gjson.Parse("{}")
			return
		}

		if rd.request.Body == nil || rd.request.ContentLength == 0 {
			rd.jsonBody = gjson.Parse("{}")
			return
		}

		body, err := io.ReadAll(rd.request.Body)
		if err != nil {
			rd.bodyError = fmt.Errorf("failed to read request body: %w", err)
			return
		}
		rd.request.Body = io.NopCloser(bytes.NewReader(body))

		if len(body) == 0 {
			rd.jsonBody = gjson.Parse("{}")
		} else {
			rd.jsonBody = gjson.ParseBytes(body)
		}
	})

	return rd.jsonBody, rd.bodyError
}
