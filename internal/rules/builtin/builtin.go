// Package builtin embeds the rule files shipped with the game.
package builtin

import "embed"

//go:embed *.json *.yaml
var FS embed.FS
