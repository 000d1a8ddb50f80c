package qa

// defaultStopwords are common Greek words skipped during keyword
// extraction. Keywords shorter than minKeywordLen are skipped regardless.
var defaultStopwords = []string{
	"μπορεις", "πεις", "λεει", "συγγραφη", "υποχρεωσεων",
	"για", "τις", "τους", "την", "του", "στην", "στο", "στον",
	"και", "ειναι", "θα", "με", "από", "που",
	"αυτο", "αυτη", "αυτος",
}
