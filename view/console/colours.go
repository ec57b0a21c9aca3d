package console

const (
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m" // Bright black, often appears as gray

	CyanInverse = "\033[7;36m"

	ResetColor = "\033[0m" // Reset to default color
)

// regionColours gives every region a stable colour so the transcript is easy to scan.
var regionColours = map[string]string{
	"sign-in":       Green,
	"fetch-profile": Blue,
	"user-info":     Cyan,
	"user-name":     Magenta,
	"profile-image": Yellow,
}

func colourFor(region string) string {
	if c, ok := regionColours[region]; ok {
		return c
	}
	return Gray
}
