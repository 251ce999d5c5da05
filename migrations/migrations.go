// README: Embedded SQL migrations applied at startup and by store tests.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
