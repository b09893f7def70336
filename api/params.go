package api

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseBool reads a boolean query value. "true" and "1" are true, "false"
// and "0" are false; anything else, including "", is nil.
func ParseBool(s string) *bool {
	var b bool
	switch s {
	case "true", "1":
		b = true
	case "false", "0":
		b = false
	default:
		return nil
	}
	return &b
}

// boolQuery reads an optional boolean query parameter. A present but
// unparseable value is a bad request.
func boolQuery(c *gin.Context, key string) (*bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	b := ParseBool(raw)
	if b == nil {
		return nil, badRequest("%s must be a boolean", key)
	}
	return b, nil
}

// onlyQuery rejects query parameters other than allowed, then drops keys
// whose values are all empty so that "?maxEmployees=" binds as absent.
// It must run before anything reads the query.
func onlyQuery(c *gin.Context, allowed ...string) error {
	values := c.Request.URL.Query()
	for key := range values {
		known := false
		for _, a := range allowed {
			if key == a {
				known = true
				break
			}
		}
		if !known {
			return badRequest("unknown query parameter: %s", key)
		}
	}
	dropEmpty(values)
	c.Request.URL.RawQuery = values.Encode()
	return nil
}

func dropEmpty(values url.Values) {
	for key, vs := range values {
		kept := vs[:0]
		for _, v := range vs {
			if v != "" {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			values.Del(key)
			continue
		}
		values[key] = kept
	}
}

func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, badRequest("id must be an integer")
	}
	return id, nil
}
