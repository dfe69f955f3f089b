package llm

import "fmt"

// BaseInstructions is the system preamble for the schema-in-prompt path.
const BaseInstructions = `You are a computer function. You are expected to perform the following tasks:
Step 1: Review and understand the 'instructions'.
Step 2: Prepare a response by processing the provided data as per the 'instructions'.
Step 3: Convert the response to a Json object. The Json object must match the schema provided as the ` + "`output json schema`" + `.
Step 4: Validate that the Json object matches the 'output json schema' and correct if needed. If you are not able to generate a valid Json, respond with "Error calculating the answer."
Step 5: Respond ONLY with properly formatted Json object. No other words or text, only valid Json in the answer.
`

// FunctionInstructions is the system preamble for the function-calling path.
const FunctionInstructions = `You are a computer function. You are expected to perform the following tasks:
Step 1: Review and understand the 'instructions'.
Step 2: Prepare a response by processing the provided data as per the 'instructions'.
Step 3: Convert the response to a Json object. The Json object must match the schema provided in the function definition.
Step 4: Validate that the Json object matches the function properties and correct if needed. If you are not able to generate a valid Json, respond with "Error calculating the answer."
Step 5: Respond ONLY with properly formatted Json object. No other words or text, only valid Json in the answer.
`

// AssistantInstructions is the preamble posted when configuring a
// thread-based assistant.
const AssistantInstructions = `You are a computer function. You are expected to perform the following tasks:
1: Review and understand the content of user messages passed to you in the thread.
2: Review and consider any files the user provided attached to the messages.
3: Prepare response using your language model based on the user messages and provided files.
4: Respond ONLY with properly formatted data portion of a Json. No other words or text, only valid Json in your answers.
`

// SelectInstructions picks the right preamble for the compilation mode.
func SelectInstructions(functionCalling bool) string {
	if functionCalling {
		return FunctionInstructions
	}
	return BaseInstructions
}

// UserMessage frames the caller's instructions and the output schema the
// way provider-agnostic prompts expect them.
func UserMessage(instructions, schema string) string {
	return fmt.Sprintf("<instructions>\n%s\n</instructions>\n<output json schema>\n%s\n</output json schema>", instructions, schema)
}
