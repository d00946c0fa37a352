package scan

// ResponseSteps is the fixed remediation script played whenever a cycle
// reports any anomaly. The script does not branch on the anomaly content.
var ResponseSteps = []string{
	"Analyzing threat patterns...",
	"Isolating affected systems...",
	"Rolling back malicious changes...",
	"System healed and secured!",
}

// A ResponseStep is one emitted line of the remediation script. The final
// step reports completion rather than a warning.
type ResponseStep struct {
	Step  int
	Text  string
	Final bool
}

func responseStep(i int) ResponseStep {
	return ResponseStep{
		Step:  i,
		Text:  ResponseSteps[i],
		Final: i == len(ResponseSteps)-1,
	}
}
