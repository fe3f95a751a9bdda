package middle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/dekarrin/simplegrammar/server/dao/inmem"
	"github.com/dekarrin/simplegrammar/server/token"
	"github.com/stretchr/testify/assert"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func Test_Authenticate(t *testing.T) {
	testCases := []struct {
		name         string
		required     bool
		header       func(tok string) string
		expectStatus int
		expectUser   bool
	}{
		{name: "required, valid token", required: true, header: func(tok string) string { return "Bearer " + tok }, expectStatus: http.StatusOK, expectUser: true},
		{name: "required, no token", required: true, header: func(string) string { return "" }, expectStatus: http.StatusUnauthorized},
		{name: "required, bad token", required: true, header: func(string) string { return "Bearer abc.def.ghi" }, expectStatus: http.StatusUnauthorized},
		{name: "optional, valid token", header: func(tok string) string { return "Bearer " + tok }, expectStatus: http.StatusOK, expectUser: true},
		{name: "optional, no token", header: func(string) string { return "" }, expectStatus: http.StatusOK},
		{name: "optional, bad token", header: func(string) string { return "Bearer abc.def.ghi" }, expectStatus: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			db := inmem.NewDatastore()

			author, err := db.Users().Create(context.Background(), dao.User{Username: "kanaya", Password: "cGFzcw==", Role: dao.Author})
			if !assert.NoError(err) {
				return
			}
			tok, err := token.Generate(testSecret, author)
			if !assert.NoError(err) {
				return
			}

			var gotUser dao.User
			var gotOK bool
			next := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				gotUser, gotOK = Requester(req.Context())
				w.WriteHeader(http.StatusOK)
			})
			h := Authenticate(db.Users(), testSecret, 0, tc.required)(next)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/parses", nil)
			if hdr := tc.header(tok); hdr != "" {
				req.Header.Set("Authorization", hdr)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(tc.expectStatus, w.Code)
			assert.Equal(tc.expectUser, gotOK)
			if tc.expectUser {
				assert.Equal(author.ID, gotUser.ID)
				assert.Equal(dao.Author, gotUser.Role)
			}
		})
	}
}
