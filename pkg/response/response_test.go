package response

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginated(t *testing.T) {
	res := Paginated(http.StatusOK, []string{"a", "b"}, 41, 2, 20)
	page, ok := res.Data.(Page)
	require.True(t, ok)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, "success", res.Status)

	res = Paginated(http.StatusOK, []string{}, 0, 1, 20)
	assert.Equal(t, 0, res.Data.(Page).TotalPages)
}

func TestActionResponseOmitsEmptyForward(t *testing.T) {
	out, err := json.Marshal(ActionResponse{Success: true, Request: map[string]string{"id": "r1"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"request":{"id":"r1"}}`, string(out))

	out, err = json.Marshal(Error(http.StatusNotFound, "missing"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","status_code":404,"error":"missing"}`, string(out))
}
