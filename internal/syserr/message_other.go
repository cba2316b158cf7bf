//go:build !windows

package syserr

func systemMessage(Space, int32) (string, bool) {
	return "", false
}
