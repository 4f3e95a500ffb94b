package analysis

// FrequencyTable maps a token to the number of times it occurs in a text.
// Stopwords never appear as keys.
type FrequencyTable map[string]int

// Count returns the occurrence count of token, or zero when it is absent.
func (f FrequencyTable) Count(token string) int {
	return f[token]
}

// BuildFrequencyTable counts every surviving token of text.
func BuildFrequencyTable(text string) FrequencyTable {
	table := make(FrequencyTable)

	for _, token := range Tokenize(text) {
		table[token]++
	}

	return table
}
