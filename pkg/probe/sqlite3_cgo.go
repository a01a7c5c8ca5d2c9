//go:build cgo

package probe

import _ "github.com/mattn/go-sqlite3"
