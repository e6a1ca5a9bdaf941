package tests

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/darasahq/darasa/core/user"
	emailsvc "github.com/darasahq/darasa/services/email"
	testutil "github.com/darasahq/darasa/tests"
)

var errPermissionDenied = httpErr{Error: "permission denied"}

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Teacher", "tch001", "teacher@test.cd", "s3cr3t-pwd", []string{user.RoleTeacher}, true)
	naughty := testutil.CreateUser(t, usrRepo, "N Dog", "ndog", "ndog@test.cd", "s3cr3t-pwd", []string{user.RoleStudent}, false)

	path := "/v1/users/login"

	tests := []httpTest{
		{
			name: "empty fields", body: marchallObj(t, map[string]string{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"regno": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown account", body: marchallObj(t, map[string]string{"regno": "lol", "password": "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: marchallObj(t, map[string]string{"regno": usr.RegNo, "password": "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: marchallObj(t, map[string]string{"regno": naughty.RegNo, "password": "s3cr3t-pwd"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("login with regno", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, path, marchallObj(t, map[string]string{"regno": usr.RegNo, "password": "s3cr3t-pwd"}))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		if !regexp.MustCompile(`"token":\s*".+"`).Match(rec.Body.Bytes()) {
			t.Errorf("no token in response: %s", rec.Body.String())
		}
	})

	t.Run("login with email", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, path, marchallObj(t, map[string]string{"regno": usr.Email, "password": "s3cr3t-pwd"}))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
	})
}

func Test_userApi_me(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Teacher", "tch001", "teacher@test.cd", "", []string{user.RoleTeacher}, true)

	path := "/v1/users/me"

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "own profile", token: getToken(t, usr), wantCode: http.StatusOK, wantData: marchallObj(t, usr)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_register(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "adm001", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "tch001", "teacher@test.cd", "", []string{user.RoleTeacher}, true)

	path := "/v1/users/register"
	body := marchallObj(t, map[string]interface{}{
		"name":             "New Student",
		"regno":            "stu001x",
		"email":            "new@test.cd",
		"password":         "Str0ng&pass",
		"password_confirm": "Str0ng&pass",
		"roles":            []string{user.RoleStudent},
	})

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, path, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied)}, rec)
	})

	t.Run("admin registers", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, admin), body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
	})

	t.Run("duplicate regno rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, admin), body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})
}

func Test_userApi_passwordReset(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Teacher", "tch001", "teacher@test.cd", "0ld&pass", []string{user.RoleTeacher}, true)

	t.Run("request then confirm", func(t *testing.T) {
		emailsvc.SentMessages = emailsvc.SentMessages[:0]

		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", marchallObj(t, map[string]string{"email": usr.Email}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		if len(emailsvc.SentMessages) != 1 {
			t.Fatalf("len(SentMessages) = %d, want 1", len(emailsvc.SentMessages))
		}

		match := regexp.MustCompile(`uid=(\S+)&token=(\S+)`).FindStringSubmatch(emailsvc.SentMessages[0].TextContent)
		if match == nil {
			t.Fatalf("no reset link in mail: %s", emailsvc.SentMessages[0].TextContent)
		}

		req, rec = newRequest(http.MethodPost, "/v1/users/password-reset-confirm", marchallObj(t, map[string]string{
			"uid":              match[1],
			"token":            match[2],
			"password":         "N3w&pass",
			"password_confirm": "N3w&pass",
		}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		// old password no longer works
		req, rec = newRequest(http.MethodPost, "/v1/users/login", marchallObj(t, map[string]string{"regno": usr.RegNo, "password": "0ld&pass"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}

		// new one does
		req, rec = newRequest(http.MethodPost, "/v1/users/login", marchallObj(t, map[string]string{"regno": usr.RegNo, "password": "N3w&pass"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
	})

	t.Run("unknown email still succeeds", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", marchallObj(t, map[string]string{"email": "ghost@test.cd"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusOK)
		}
	})
}
