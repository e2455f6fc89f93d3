// internal/handlers/request.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// requestValues collects the text fields of a multipart, urlencoded or flat
// JSON body. JSON arrays become repeated values and null fields are dropped.
// Other bodies carry no fields.
func requestValues(c *gin.Context) (url.Values, error) {
	if c.ContentType() == gin.MIMEJSON {
		return jsonValues(c.Request.Body)
	}

	if form := c.Request.MultipartForm; form != nil {
		return url.Values(form.Value), nil
	}

	// parsed by hand since net/http ignores DELETE bodies
	if c.ContentType() == gin.MIMEPOSTForm {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, err
		}
		return url.ParseQuery(string(body))
	}

	return url.Values{}, nil
}

func jsonValues(body io.Reader) (url.Values, error) {
	values := url.Values{}
	if body == nil {
		return values, nil
	}

	var fields map[string]interface{}
	decoder := json.NewDecoder(body)
	decoder.UseNumber()
	if err := decoder.Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return values, nil
		}
		return nil, err
	}

	for key, raw := range fields {
		switch v := raw.(type) {
		case nil:
		case []interface{}:
			values[key] = []string{}
			for _, item := range v {
				values.Add(key, fmt.Sprint(item))
			}
		default:
			values.Set(key, fmt.Sprint(v))
		}
	}
	return values, nil
}

// productID prefers the query string over the body.
func productID(c *gin.Context, values url.Values) string {
	if id := strings.TrimSpace(c.Query("id")); id != "" {
		return id
	}
	return strings.TrimSpace(values.Get("id"))
}
