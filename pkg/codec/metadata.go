package codec

import "strings"

const metadataPrefix = "metadata:"

// MetadataKey namespaces a user-supplied metadata key so it cannot
// collide with a first-class property of the same name.
func MetadataKey(key string) string {
	return metadataPrefix + key
}

// IsMetadataKey reports whether key was namespaced by MetadataKey.
func IsMetadataKey(key string) bool {
	return strings.HasPrefix(key, metadataPrefix)
}

// StripMetadataPrefix removes the "metadata:" prefix, restoring the
// caller-facing metadata key.
func StripMetadataPrefix(key string) string {
	return strings.TrimPrefix(key, metadataPrefix)
}
