package sources

import (
	"regexp"

	brerrors "github.com/victorsole/brubru/pkg/errors"
)

// procedureRefRE matches interinstitutional procedure references such as
// "2021/0106(COD)": year, four-digit number, procedure type.
var procedureRefRE = regexp.MustCompile(`^[0-9]{4}/[0-9]{4}\([A-Z]{3}\)$`)

// ValidateProcedureReference checks the "YYYY/NNNN(TYPE)" format.
func ValidateProcedureReference(ref string) error {
	if ref == "" {
		return brerrors.New(brerrors.ErrCodeInvalidInput, "procedure reference cannot be empty")
	}
	if !procedureRefRE.MatchString(ref) {
		return brerrors.New(brerrors.ErrCodeInvalidInput, "invalid procedure reference: %q (want e.g. 2021/0106(COD))", ref)
	}
	return nil
}
