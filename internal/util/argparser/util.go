package argparser

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/pborman/getopt/v2"
)

// Parse runs the option set over argv and validates every option whose
// parameter placeholder carries a range spec of the form '[min:]' or
// '[min:max]'. Options not seen on the command line keep their
// defaults and are exempt from range binding. Free-form (non-option)
// arguments are handed back to the caller as-is.
func Parse(args []string, optSet *getopt.Set) (freeArgs []string, argErrs []error) {

	if err := optSet.Getopt(args, nil); err != nil {
		argErrs = append(argErrs, err)
	}
	freeArgs = optSet.Args()

	// going through the limits when we are already in error is too confusing
	if len(argErrs) > 0 {
		return
	}

	optSet.VisitAll(func(o getopt.Option) {
		spec := []byte(reflect.ValueOf(o).Elem().FieldByName("name").String())
		if len(spec) < 2 || spec[0] != '[' || spec[len(spec)-1] != ']' {
			// not a spec we recognize
			return
		}

		max := int64((^uint64(0)) >> 1)
		min := -max - 1

		if _, err := fmt.Sscanf(string(spec), "[%d:]", &min); err != nil {
			if _, err := fmt.Sscanf(string(spec), "[%d:%d]", &min, &max); err != nil {
				argErrs = append(argErrs, fmt.Errorf("failed parsing '%s' as '[%%d:%%d]' - %s", spec, err))
				return
			}
		}

		if !o.Seen() {
			return
		}

		actual, err := strconv.ParseInt(o.Value().String(), 10, 64)
		if err != nil {
			argErrs = append(argErrs, err)
			return
		}

		if actual < min || actual > max {
			argErrs = append(argErrs, fmt.Errorf(
				"value '%d' supplied for --%s out of range [%d:%d]",
				actual,
				o.LongName(),
				min, max,
			))
		}
	})

	return
}
