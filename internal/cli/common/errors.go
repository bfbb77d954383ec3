package common

import (
	"github.com/rajithacharith/thunder-sub007/faults"
)

func ValidationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}
