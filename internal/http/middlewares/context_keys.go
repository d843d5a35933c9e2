package middlewares

// gin context keys
const (
	CtxRequestID = "request_id"
	CtxRateKey   = "rate_limit_key"
)
