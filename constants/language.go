package constants

// DefaultLanguages seed the language keyboard for submitters with no history.
var DefaultLanguages = []string{"Serbian", "English", "Russian", "German", "French", "Spanish"}
