// Package form binds several choice groups into one submittable form.
//
// # Overview
//
// A Form holds named fields (choice groups or rich selects), tracks their
// initial values for Reset and dirty checks, collects validation feedback
// and submits the serialized values to a Sink.
//
// # Basic Usage
//
//	f := form.New("survey")
//	_ = f.Add(genderGroup, sportsGroup)
//
//	sub, err := f.Submit(ctx, sink, form.WithUserAgent(r.UserAgent()))
//	if errors.Is(err, form.ErrInvalid) {
//	    return f.Errors() // field name -> failing rule names
//	}
//
// # Serialization
//
// Values are the serialized values of the fields: a choice.Pair for a
// checked single-select field, "" for an unchecked one, and a []choice.Pair
// for multi-select fields.
//
// # Validation
//
// Validation is owned by the fields themselves (see choice.WithValidator and
// package rules). Validate reads the latest feedback of every field and
// reports the rules that failed with error severity.
package form
