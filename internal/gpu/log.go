package gpu

import "log"

var logger = log.Default()

// SetLogger redirects validation messages and inspection output. Passing nil
// restores the standard logger.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.Default()
	}
	logger = l
}
