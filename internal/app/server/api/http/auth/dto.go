package auth

type Credentials struct {
	Login    string `json:"login" minLength:"3" maxLength:"32"`
	Password string `json:"password" minLength:"8"`
}

type registerInput struct {
	Body Credentials
}

type registerOutput struct {
	Body SessionResponse
}

type loginInput struct {
	Body Credentials
}

type loginOutput struct {
	Body SessionResponse
}

// SessionResponse is what both register and login return: the bearer token
// and the tenant identity every synced record will be scoped by.
type SessionResponse struct {
	Token    string `json:"token"`
	TenantID string `json:"tenant_id"`
}
