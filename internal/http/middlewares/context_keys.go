package middlewares

// Keys for values stored on the gin context.
const (
	CtxRequestID = "request_id"
)
