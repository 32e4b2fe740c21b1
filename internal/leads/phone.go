package leads

import "strings"

// FormatPhone renders a US phone number as "+1<digits> US", the text format
// the phone column accepts. Country prefixes 001, +1 and a leading 1 on an
// eleven digit number are dropped first.
func FormatPhone(input string) string {
	var b strings.Builder
	for _, r := range input {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	clean := b.String()

	switch {
	case strings.HasPrefix(clean, "001"):
		clean = clean[3:]
	case strings.HasPrefix(clean, "+1"):
		clean = clean[2:]
	case strings.HasPrefix(clean, "1") && len(clean) == 11:
		clean = clean[1:]
	}
	return "+1" + clean + " US"
}

// PhoneFormatSamples are the reference inputs exercised by the phone
// diagnostics endpoint; every one should format to +17473089408 US.
var PhoneFormatSamples = []string{
	"7473089408",
	"747-308-9408",
	"747.308.9408",
	"747 308 9408",
	"(747)3089408",
	"(747) 3089408",
	"(747)308-9408",
	"(747) 308-9408",
	"(747) 308.9408",
	"(747) 308 9408",
	"17473089408",
	"1-747-308-9408",
	"1.747.308.9408",
	"1 747 308 9408",
	"1 (747)3089408",
	"1 (747) 308-9408",
	"+17473089408",
	"+1-747-308-9408",
	"+1.747.308.9408",
	"+1 747 308 9408",
	"+1 (747)3089408",
	"+1 (747) 308-9408",
	"0017473089408",
	"001-747-308-9408",
	"001 747 308 9408",
}

// PhoneSampleExpected is the formatted value of every PhoneFormatSamples entry.
const PhoneSampleExpected = "+17473089408 US"
