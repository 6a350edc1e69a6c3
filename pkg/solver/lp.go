package solver

import (
	"fmt"
	"regexp"
	"strings"
)

// Terms written on a single line of an LP file, longer rows continue on the next line
const lpTermsPerLine = 16

var lpInvalidName = regexp.MustCompile(`[^A-Za-z0-9_.]`)

func lpVariable(variable uint64) string {
	return fmt.Sprintf("x%d", variable)
}

func lpConstraintName(name string, index int) string {
	if name == "" {
		return fmt.Sprintf("r%d", index+1)
	}
	// Row names must be unique and cannot contain operators, so the position is kept as a suffix
	return fmt.Sprintf("%v_%d", lpInvalidName.ReplaceAllString(name, "_"), index+1)
}

// ToLP renders the problem in CPLEX LP format with a zero objective and binary variables
func (problem Problem) ToLP() string {
	var builder strings.Builder
	builder.WriteString("\\ feasibility model\n")
	builder.WriteString("Minimize\n")
	if problem.Variables > 0 {
		fmt.Fprintf(&builder, " obj: 0 %v\n", lpVariable(1))
	} else {
		builder.WriteString(" obj:\n")
	}

	builder.WriteString("Subject To\n")
	for i, constraint := range problem.Constraints {
		fmt.Fprintf(&builder, " %v:", lpConstraintName(constraint.Name, i))
		if len(constraint.Literals) == 0 {
			// An empty row still needs a term
			fmt.Fprintf(&builder, " 0 %v", lpVariable(1))
		}
		for j, literal := range constraint.Literals {
			if j > 0 && j%lpTermsPerLine == 0 {
				builder.WriteString("\n  ")
			}
			if j > 0 {
				builder.WriteString(" +")
			}
			fmt.Fprintf(&builder, " %v", lpVariable(uint64(literal)))
		}
		fmt.Fprintf(&builder, " %v %d\n", constraint.Sense, constraint.Bound)
	}

	builder.WriteString("Binaries\n")
	for variable := uint64(1); variable <= problem.Variables; variable++ {
		fmt.Fprintf(&builder, " %v", lpVariable(variable))
		if variable%lpTermsPerLine == 0 || variable == problem.Variables {
			builder.WriteString("\n")
		}
	}
	builder.WriteString("End\n")
	return builder.String()
}
