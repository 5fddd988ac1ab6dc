package models

// VerifyCodeRequest accepts the legacy "token" field used by the mobile app.
type VerifyCodeRequest struct {
	SessionToken string `json:"sessionToken"`
	Token        string `json:"token"`
	Code         string `json:"code"`
}

func (r VerifyCodeRequest) Session() string {
	if r.SessionToken != "" {
		return r.SessionToken
	}
	return r.Token
}

type ResendCodeRequest struct {
	SessionToken string `json:"sessionToken"`
	Token        string `json:"token"`
}

func (r ResendCodeRequest) Session() string {
	if r.SessionToken != "" {
		return r.SessionToken
	}
	return r.Token
}

type LoginResponse struct {
	SessionToken string `json:"sessionToken"`
	// Deprecated: mobile clients <= 1.0 read tempToken. Use SessionToken.
	TempToken string `json:"tempToken"`
	ExpiresIn int    `json:"expiresIn"`
	Message   string `json:"message"`
}

type VerifyResponse struct {
	AccessToken string `json:"accessToken"`
	// Deprecated: alias of AccessToken kept for the mobile app.
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	Message   string `json:"message"`
}

type ResendResponse struct {
	ExpiresIn int    `json:"expiresIn"`
	Message   string `json:"message"`
}
