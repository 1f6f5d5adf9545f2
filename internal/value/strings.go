package value

// MaxSmallString is the number of bytes that fit inline in a payload.
const MaxSmallString = 6

// MakeSmallString inlines s into a VALUE_T_SYM_STR word. The empty string maps
// to EmptyString. Strings longer than MaxSmallString or containing NUL bytes
// do not fit and report false.
func MakeSmallString(s string) (Value, bool) {
	if s == "" {
		return EmptyString, true
	}
	if len(s) > MaxSmallString {
		return 0, false
	}
	var raw uint64
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return 0, false
		}
		raw |= uint64(s[i]) << (8 * i)
	}
	return Value(raw | VALUE_T_SYM_STR), true
}

// SmallString decodes an inline string word. It reports false for any other
// kind of word.
func SmallString(v Value) (string, bool) {
	if v == EmptyString {
		return "", true
	}
	if v.Header() != VALUE_T_SYM_STR {
		return "", false
	}
	raw := v.Payload()
	buf := make([]byte, 0, MaxSmallString)
	for i := 0; i < MaxSmallString; i++ {
		b := byte(raw >> (8 * i))
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}
	return string(buf), true
}
