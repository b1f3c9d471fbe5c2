package db

import "strings"

// LikeEscape is the ESCAPE clause matching ContainsPattern.
const LikeEscape = `ESCAPE '\'`

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns term into a LIKE/ILIKE pattern that matches it as a
// literal substring. Use it with LikeEscape.
func ContainsPattern(term string) string {
	return "%" + likeReplacer.Replace(term) + "%"
}
