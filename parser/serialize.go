package parser

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/confweave/confweave/internal/ctyval"
)

// Serialize renders a typed value back into a parsable serialized form.
// Strings serialize as themselves, so plain values round-trip unchanged;
// any other value is rendered as a full expression in the default language.
func Serialize(value any) (string, error) {
	switch tv := value.(type) {
	case nil:
		return "", nil
	case string:
		return tv, nil
	}

	cv, err := ctyval.FromGo(value)
	if err != nil {
		return "", fmt.Errorf("cannot serialize %T: %w", value, err)
	}
	literal := string(hclwrite.TokensForValue(cv).Bytes())
	return "=hcl:" + literal, nil
}
