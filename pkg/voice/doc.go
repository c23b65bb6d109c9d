// Package voice is the boundary between the speech pipeline and the
// restaurant's business logic.
//
// The dialogue model never calls Go code directly. It emits a ToolCall
// (a name plus JSON-decoded arguments); a Registry looks the name up and
// runs the matching Tool handler, and the handler's string result is
// spoken back to the caller.
//
// # Usage
//
//	reg := voice.NewRegistry()
//	reg.Register(voice.Tool{
//	    Name:        "book_table",
//	    Description: "Book a table at the restaurant",
//	    Parameters:  schema,
//	    Handler: func(args map[string]any) (string, error) {
//	        return "Your table is booked.", nil
//	    },
//	})
//
//	result := reg.Dispatch(voice.ToolCall{ID: "c1", Name: "book_table", Arguments: args})
//
// # Arguments
//
// Arguments arrive as decoded JSON, so numbers are float64. Use String and
// Int to read them without repeating type switches in every handler.
package voice
