package trees

import "strings"

// Separator splits path segments. A leading separator marks an absolute path.
const Separator = "/"

// segments returns the non-empty components of path. Redundant and trailing
// separators disappear here.
func segments(path string) []string {
	parts := strings.Split(path, Separator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Dirname returns the absolute parent path: "/" for "", "/" and single-segment
// paths, otherwise all but the last segment. Relative input is treated as if
// rooted at "/". No "." or ".." handling is done.
func Dirname(path string) string {
	segs := segments(path)
	if len(segs) <= 1 {
		return Separator
	}
	return Separator + strings.Join(segs[:len(segs)-1], Separator)
}

// Basename returns the last segment, or "" for "" and "/".
func Basename(path string) string {
	segs := segments(path)
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// Normalize joins Dirname and Basename, dropping trailing and repeated
// separators.
func Normalize(path string) string {
	dir := Dirname(path)
	if dir != Separator {
		dir += Separator
	}
	return dir + Basename(path)
}

// Join appends name to an absolute directory path without doubling the
// separator at the root.
func Join(dir, name string) string {
	if strings.HasSuffix(dir, Separator) {
		return dir + name
	}
	return dir + Separator + name
}

// IsAbs reports whether path starts at the root.
func IsAbs(path string) bool {
	return strings.HasPrefix(path, Separator)
}
