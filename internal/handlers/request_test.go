package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valuesFor(t *testing.T, method, contentType, body string) (url.Values, error) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/", strings.NewReader(body))
	if contentType != "" {
		c.Request.Header.Set("Content-Type", contentType)
	}
	return requestValues(c)
}

func TestRequestValues(t *testing.T) {
	values, err := valuesFor(t, http.MethodPatch, "application/json",
		`{"id":"abc","price":19.99,"stocks":3,"tags":["a","b"],"cutPrice":null,"big":1e21}`)
	require.NoError(t, err)
	assert.Equal(t, "abc", values.Get("id"))
	assert.Equal(t, "19.99", values.Get("price"))
	assert.Equal(t, "3", values.Get("stocks"))
	assert.Equal(t, []string{"a", "b"}, values["tags"])
	assert.Equal(t, "1e21", values.Get("big"))
	assert.NotContains(t, values, "cutPrice")

	values, err = valuesFor(t, http.MethodDelete, "application/x-www-form-urlencoded", "id=xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", values.Get("id"))

	values, err = valuesFor(t, http.MethodDelete, "application/json", "")
	require.NoError(t, err)
	assert.Empty(t, values)

	values, err = valuesFor(t, http.MethodDelete, "", "")
	require.NoError(t, err)
	assert.Empty(t, values)

	_, err = valuesFor(t, http.MethodPatch, "application/json", `{"id":`)
	assert.Error(t, err)
}

func TestProductID_PrefersQuery(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/?id=+q1+", nil)

	assert.Equal(t, "q1", productID(c, url.Values{"id": {"b1"}}))

	c.Request = httptest.NewRequest(http.MethodDelete, "/", nil)
	assert.Equal(t, "b1", productID(c, url.Values{"id": {" b1 "}}))
}
