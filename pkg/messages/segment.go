package messages

// MaxTextLength is the Bot API limit for one text message.
const MaxTextLength = 4096

// Split cuts text into ordered chunks of at most maxLength runes,
// preferring paragraph breaks, then line breaks, then spaces, and hard
// cutting only when a single run has no such boundary. Separators stay
// attached to the preceding chunk, so concatenating the chunks
// reconstructs the input exactly.
func Split(text string, maxLength int) ([]string, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	if maxLength <= 0 {
		maxLength = MaxTextLength
	}

	runes := []rune(text)
	if len(runes) <= maxLength {
		return []string{text}, nil
	}

	var chunks []string
	for len(runes) > maxLength {
		cut := splitPoint(runes, maxLength)
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks, nil
}

// splitPoint finds the cut index for the next chunk, scanning backward
// through the window for the best boundary.
func splitPoint(runes []rune, maxLength int) int {
	// Paragraph break: cut after the blank line.
	for i := maxLength - 1; i > 0; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}
	// Line break.
	for i := maxLength - 1; i > 0; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}
	// Word boundary.
	for i := maxLength - 1; i > 0; i-- {
		if runes[i] == ' ' {
			return i + 1
		}
	}
	return maxLength
}
