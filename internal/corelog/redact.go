package corelog

// secretFieldNames names fields whose values are never written verbatim.
// This is a denylist on field name, not a scan of the value: the core's
// log call sites already know which fields carry secret material.
var secretFieldNames = map[string]bool{
	"key":         true,
	"password":    true,
	"value":       true,
	"plaintext":   true,
	"token":       true,
	"accessToken": true,
}

// redactField returns "[REDACTED]" for a value logged under a known-secret
// field name, and v unchanged otherwise. Key fingerprints are exempt: they
// are safe to display and transmit.
func redactField(key string, v interface{}) interface{} {
	if !secretFieldNames[key] {
		return v
	}
	return "[REDACTED]"
}
