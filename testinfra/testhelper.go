package testinfra

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"repairx/authority"
	"repairx/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSecCtx build security context with perms like "TECHNICIAN_100" or
// "SAAS_ADMIN"
func BuildSecCtx(uid types.ID, perms ...string) *session.Context {
	orgRoles := authority.OrgRoles{}
	for _, perm := range perms {
		idx := strings.LastIndex(perm, "_")
		if idx > 0 {
			role := perm[0:idx]
			orgId, err := types.ParseID(perm[idx+1:])
			if err != nil {
				continue
			}
			orgRoles = append(orgRoles, authority.OrgRole{OrgID: orgId, Role: role})
		}
	}

	return &session.Context{Token: uuidToken(uid), Identity: session.Identity{ID: uid, Name: "user" + uid.String()},
		Perms: perms, OrgRoles: orgRoles}
}

func uuidToken(uid types.ID) string {
	return "test-token-" + uid.String()
}

// SignIn seeds the token cache and returns the cookie tests should carry.
func SignIn(secCtx *session.Context) *http.Cookie {
	session.TokenCache.SetDefault(secCtx.Token, secCtx)
	return &http.Cookie{Name: session.KeySecToken, Value: secCtx.Token}
}

func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, http.Header) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code, w.Body.String(), w.Header()
}
