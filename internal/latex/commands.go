package latex

// knownCommands is the allow-list used by CheckStrict: common math-mode
// commands a recognition result is expected to contain. Anything outside
// this set is reported as unknown rather than passed through to a backend.
// IsKnownCommand reports whether name is on the allow-list. Rendering
// backends consult this when asked to fail on unknown commands.
func IsKnownCommand(name string) bool {
	return knownCommands[name]
}

var knownCommands = map[string]bool{
	// Fractions, roots, accents
	"frac": true, "dfrac": true, "tfrac": true, "sqrt": true,
	"hat": true, "bar": true, "vec": true, "dot": true, "ddot": true,
	"tilde": true, "overline": true, "underline": true,

	// Greek letters
	"alpha": true, "beta": true, "gamma": true, "delta": true,
	"epsilon": true, "zeta": true, "eta": true, "theta": true,
	"lambda": true, "mu": true, "nu": true, "xi": true, "pi": true,
	"rho": true, "sigma": true, "tau": true, "phi": true, "chi": true,
	"psi": true, "omega": true,
	"Gamma": true, "Delta": true, "Theta": true, "Lambda": true,
	"Xi": true, "Pi": true, "Sigma": true, "Phi": true, "Psi": true,
	"Omega": true,

	// Operators and relations
	"sum": true, "prod": true, "int": true, "oint": true,
	"lim": true, "sup": true, "inf": true, "max": true, "min": true,
	"log": true, "ln": true, "exp": true,
	"sin": true, "cos": true, "tan": true,
	"cdot": true, "times": true, "div": true, "pm": true, "mp": true,
	"leq": true, "geq": true, "neq": true, "approx": true, "equiv": true,
	"infty": true, "partial": true, "nabla": true,
	"rightarrow": true, "leftarrow": true, "Rightarrow": true,

	// Grouping and layout
	"left": true, "right": true, "begin": true, "end": true,
	"mathbb": true, "mathbf": true, "mathrm": true, "mathcal": true,
	"text": true, "quad": true, "qquad": true,
}
