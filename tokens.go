package lectio

// Tokens recognized in templates. Each is a literal substring of visible
// slide text that the renderer resolves to content from the payload.
const (
	TokenLiturgicalDay    = "{LITURGICAL_DAY}"
	TokenFirstReadingRef  = "{FIRST_READING_REF}"
	TokenFirstReadingTxt  = "{FIRST_READING_TXT}"
	TokenPsalmRef         = "{PSALM_REF}"
	TokenPsalmTxt         = "{PSALM_TXT}"
	TokenSecondReadingRef = "{SECOND_READING_REF}"
	TokenSecondReadingTxt = "{SECOND_READING_TXT}"
	TokenAcclamationRef   = "{ACCLAMATION_REF}"
	TokenAcclamationTxt   = "{ACCLAMATION_TXT}"
	TokenGospelRef        = "{GOSPEL_REF}"
	TokenGospelTxt        = "{GOSPEL_TXT}"
)

// KnownTokens lists every token the renderer resolves. Tokens absent from
// the payload are blanked rather than left visible in the output.
func KnownTokens() []string {
	return []string{
		TokenLiturgicalDay,
		TokenFirstReadingRef,
		TokenFirstReadingTxt,
		TokenPsalmRef,
		TokenPsalmTxt,
		TokenSecondReadingRef,
		TokenSecondReadingTxt,
		TokenAcclamationRef,
		TokenAcclamationTxt,
		TokenGospelRef,
		TokenGospelTxt,
	}
}

// WaterfallTokens lists the body-text tokens that may span multiple slides
// and therefore go through waterfall expansion instead of flat substitution.
func WaterfallTokens() []string {
	return []string{
		TokenFirstReadingTxt,
		TokenPsalmTxt,
		TokenSecondReadingTxt,
		TokenGospelTxt,
	}
}

// RefrainToken is the waterfall token whose text alternates between refrain
// and stanza blocks. It is always chunked by the refrain chunker, never by
// length bounds.
const RefrainToken = TokenPsalmTxt
