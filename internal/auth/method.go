package auth

// Method is the authentication channel an account is bound to at
// creation. It never changes afterwards outside privileged admin action.
type Method string

const (
	MethodEmailAndPassword Method = "emailAndPassword"
	MethodGoogle           Method = "google"
	MethodApple            Method = "apple"
)

func (m Method) Valid() bool {
	switch m {
	case MethodEmailAndPassword, MethodGoogle, MethodApple:
		return true
	}
	return false
}
