package provider

// DefaultErrorMessage 是错误码与错误信息都缺失时的兜底提示。
const DefaultErrorMessage = "404NotFound"

// errorMessages 是 provider 错误码到用户提示的固定映射，启动时构建一次。
// 错误码沿用 Microsoft Graph 的命名，其他 provider 需映射到同一组取值。
var errorMessages = map[string]string{
	"accessDenied":         "the caller does not have permission to perform the action",
	"activityLimitReached": "the app or user has been throttled",
	"generalException":     "an unspecified error has occurred",
	"invalidRange":         "the specified byte range is invalid or unavailable",
	"invalidRequest":       "the request is malformed or incorrect",
	"itemNotFound":         "the resource could not be found",
	"malwareDetected":      "malicious content was detected in the requested resource",
	"nameAlreadyExists":    "the specified item name already exists",
	"notAllowed":           "the action is not allowed by the system",
	"notSupported":         "the request is not supported by the system",
	"resourceModified":     "the resource being updated has changed since the caller last read it",
	"resyncRequired":       "the delta token is no longer valid, and the app must reset the sync state",
	"serviceNotAvailable":  "the service is not available, try the request again after a delay",
	"quotaLimitReached":    "the user has reached their quota limit",
	"unauthenticated":      "the caller is not authenticated",
}

// ErrorMessage 查询错误码对应的提示。
func ErrorMessage(code string) (string, bool) {
	msg, ok := errorMessages[code]
	return msg, ok
}

// Describe 按“错误码表 → envelope message → 404NotFound”的顺序生成提示。
func Describe(env *ErrorEnvelope) string {
	if env == nil {
		return DefaultErrorMessage
	}
	if msg, ok := ErrorMessage(env.Code); ok {
		return msg
	}
	if env.Message != "" {
		return env.Message
	}
	return DefaultErrorMessage
}
