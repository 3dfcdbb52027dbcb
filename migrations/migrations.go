// Package migrations embeds the SQL schema applied by `oncopacket migrate`.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
