package analyzer

import "fmt"

// DataRetrievalError reports that a price series could not be obtained or was unusable.
type DataRetrievalError struct {
	Symbol string
	Err    error
}

func (e *DataRetrievalError) Error() string {
	return fmt.Sprintf("retrieve %s: %v", e.Symbol, e.Err)
}

func (e *DataRetrievalError) Unwrap() error { return e.Err }
