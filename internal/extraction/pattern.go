package extraction

import (
	"errors"
	"fmt"
	"regexp/syntax"
	"strings"
)

// translatePattern rewrites escapes that rule authors write with Python re
// meaning into their RE2 spelling. Only \Z (absolute end of text) differs.
func translatePattern(pattern string) string {
	if !strings.Contains(pattern, `\Z`) {
		return pattern
	}

	var b strings.Builder
	b.Grow(len(pattern))
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c == '\\' && i+1 < len(pattern) {
			next := pattern[i+1]
			if next == 'Z' {
				next = 'z'
			}
			b.WriteByte(c)
			b.WriteByte(next)
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// describeSyntaxError names the RE2 limitation behind a compile failure
// when the pattern uses look-around or backreferences
func describeSyntaxError(pattern string, err error) error {
	var synErr *syntax.Error
	if errors.As(err, &synErr) {
		switch synErr.Code {
		case syntax.ErrInvalidPerlOp, syntax.ErrInvalidEscape, syntax.ErrInvalidNamedCapture:
			return fmt.Errorf("invalid pattern %q: %w (look-around and backreferences are not supported)", pattern, err)
		}
	}
	return fmt.Errorf("invalid pattern %q: %w", pattern, err)
}
