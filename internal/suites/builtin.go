package suites

import "github.com/modelbench/modelbench/internal/models"

// builtinSuites returns the suite set shipped with the binary. IDs are
// stable: snapshots and baselines key on them.
func builtinSuites() []models.SuiteSpec {
	return []models.SuiteSpec{
		intentSuite(),
		jsonOutputSuite(),
		needleSuite(),
		codeGenSuite(),
		functionSelectSuite(),
		toolArgumentsSuite(),
		contextScalingSuite(),
		reasoningSuite(),
		instructionSuite(),
		multiTurnSuite(),
		latencySuite(),
	}
}

var intentLabels = []string{
	"refund_request", "billing_issue", "technical_problem", "account_access",
	"shipping_inquiry", "product_question", "cancellation", "feedback",
}

const intentPreamble = "Classify the customer message into exactly one of these intents: " +
	"refund_request, billing_issue, technical_problem, account_access, shipping_inquiry, " +
	"product_question, cancellation, feedback.\n\nMessage: "

func intentCase(id, message, exact, secondary string) models.CaseSpec {
	return models.CaseSpec{
		ID:                id,
		Prompt:            intentPreamble + message,
		InstructionPrefix: "Reply with only the intent label.",
		MaxTokens:         16,
		Expect: models.Expectation{
			Exact:     exact,
			Secondary: secondary,
			Labels:    intentLabels,
		},
	}
}

func intentSuite() models.SuiteSpec {
	return models.SuiteSpec{
		ID:     "intent",
		Kind:   models.KindExact,
		Weight: 1.0,
		Cases: []models.CaseSpec{
			intentCase("intent-refund-damaged",
				"My order arrived with a cracked screen and I want my money back.",
				"refund_request", ""),
			intentCase("intent-double-charge",
				"I was charged twice for the same subscription this month.",
				"billing_issue", "refund_request"),
			intentCase("intent-app-crash",
				"The app crashes every time I open the settings page on my phone.",
				"technical_problem", ""),
			intentCase("intent-locked-out",
				"I can't log in anymore, it says my password is wrong but I never changed it.",
				"account_access", "technical_problem"),
			intentCase("intent-where-package",
				"It's been nine days and the tracking page still says 'label created'. Where is my package?",
				"shipping_inquiry", ""),
			intentCase("intent-waterproof",
				"Before I buy, does the speaker survive being dropped in a pool?",
				"product_question", ""),
			intentCase("intent-cancel-plan",
				"Please close my account and stop billing me from next month.",
				"cancellation", "billing_issue"),
			intentCase("intent-praise",
				"Just wanted to say the new dashboard is a huge improvement. Great work!",
				"feedback", ""),
			intentCase("intent-refund-late",
				"The gift arrived two weeks after the birthday. I'd like a refund for the express shipping fee.",
				"refund_request", "shipping_inquiry"),
			intentCase("intent-invoice-wrong",
				"The invoice lists 12 seats but we only have 8 users on the plan.",
				"billing_issue", ""),
			intentCase("intent-2fa-code",
				"The two-factor codes you send never arrive on my new number.",
				"account_access", "technical_problem"),
			intentCase("intent-compat",
				"Will the cable work with a 2019 laptop that only has USB-A ports?",
				"product_question", ""),
		},
	}
}

func jsonOutputSuite() models.SuiteSpec {
	personSchema := map[string]any{
		"type":     "object",
		"required": []any{"name", "age", "email"},
		"properties": map[string]any{
			"name":  map[string]any{"type": "string"},
			"age":   map[string]any{"type": "integer"},
			"email": map[string]any{"type": "string"},
		},
	}
	listSchema := map[string]any{
		"type":     "object",
		"required": []any{"items"},
		"properties": map[string]any{
			"items": map[string]any{
				"type":     "array",
				"minItems": 3,
				"items":    map[string]any{"type": "string"},
			},
		},
	}
	eventSchema := map[string]any{
		"type":     "object",
		"required": []any{"title", "date", "attendees"},
		"properties": map[string]any{
			"title":     map[string]any{"type": "string"},
			"date":      map[string]any{"type": "string"},
			"attendees": map[string]any{"type": "integer"},
		},
	}
	nestedSchema := map[string]any{
		"type":     "object",
		"required": []any{"order"},
		"properties": map[string]any{
			"order": map[string]any{
				"type":     "object",
				"required": []any{"id", "total", "lines"},
				"properties": map[string]any{
					"id":    map[string]any{"type": "string"},
					"total": map[string]any{"type": "number"},
					"lines": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":     "object",
							"required": []any{"sku", "qty"},
							"properties": map[string]any{
								"sku": map[string]any{"type": "string"},
								"qty": map[string]any{"type": "integer"},
							},
						},
					},
				},
			},
		},
	}
	boolSchema := map[string]any{
		"type":     "object",
		"required": []any{"available", "reason"},
		"properties": map[string]any{
			"available": map[string]any{"type": "boolean"},
			"reason":    map[string]any{"type": "string"},
		},
	}

	jsonCase := func(id, prompt string, schema map[string]any) models.CaseSpec {
		return models.CaseSpec{
			ID:                id,
			Prompt:            prompt,
			InstructionPrefix: "Respond with a single JSON document only.",
			MaxTokens:         512,
			Expect:            models.Expectation{Schema: schema},
		}
	}

	return models.SuiteSpec{
		ID:     "json-output",
		Kind:   models.KindJSON,
		Weight: 1.5,
		Cases: []models.CaseSpec{
			jsonCase("json-person",
				"Extract the person as JSON with fields name (string), age (integer), and email (string): "+
					"\"Maria Kovacs, 34, reachable at maria.k@example.com\"", personSchema),
			jsonCase("json-person-prose",
				"Turn this into JSON with name, age, and email fields: \"Contact Devon Price. He just "+
					"turned forty and uses devon@example.org for work.\"", personSchema),
			jsonCase("json-list",
				"Respond with a JSON object containing an \"items\" array of at least three primary colors.", listSchema),
			jsonCase("json-event",
				"Produce JSON with title (string), date (string), attendees (integer) for: the platform "+
					"review on 2026-09-12 with 14 people attending.", eventSchema),
			jsonCase("json-event-relative",
				"As JSON with fields title, date, attendees: \"Sprint retro, first Friday of October 2026, "+
					"whole team of 9\". Use ISO dates.", eventSchema),
			jsonCase("json-nested-order",
				"Convert to JSON shaped as {\"order\": {\"id\", \"total\", \"lines\": [{\"sku\", \"qty\"}]}}: "+
					"order A-1042 totals 59.90 and contains 2 of SKU-11 and 1 of SKU-80.", nestedSchema),
			jsonCase("json-availability",
				"Respond as JSON {\"available\": boolean, \"reason\": string}: can a party of 12 be seated "+
					"at 19:00 if the largest table holds 8?", boolSchema),
			jsonCase("json-escaping",
				"Produce JSON with fields name, age, email for: \"Jörg \\\"JD\\\" Dreyer, 29, jd@example.net\". "+
					"Preserve the quotes in the name.", personSchema),
		},
	}
}

func needleCase(id string, position float64, needle, question, answer string) models.CaseSpec {
	return models.CaseSpec{
		ID:                id,
		Prompt:            question,
		ContextText:       needle,
		ContextFraction:   position,
		InstructionPrefix: "Answer using only the reference document. Reply with only the requested value.",
		MaxTokens:         32,
		Expect:            models.Expectation{Exact: answer},
	}
}

func needleSuite() models.SuiteSpec {
	return models.SuiteSpec{
		ID:     "needle",
		Kind:   models.KindExact,
		Weight: 1.0,
		Cases: []models.CaseSpec{
			needleCase("needle-early", 0.1,
				"The access code for the records vault is aurora-7749.",
				"What is the access code for the records vault?", "aurora-7749"),
			needleCase("needle-quarter", 0.25,
				"The shipment from the Lisbon office weighs 412 kilograms.",
				"How many kilograms does the shipment from the Lisbon office weigh?", "412"),
			needleCase("needle-middle", 0.5,
				"The emergency contact for building C is extension 5523.",
				"What is the emergency contact extension for building C?", "5523"),
			needleCase("needle-late", 0.75,
				"The migration freeze begins on the 14th of November.",
				"On what date does the migration freeze begin?", "14th of november"),
			needleCase("needle-end", 0.9,
				"The staging cluster password rotates every 33 days.",
				"How many days pass between staging cluster password rotations?", "33"),
		},
	}
}

func codeGenSuite() models.SuiteSpec {
	codeCase := func(id, prompt string, required []string) models.CaseSpec {
		return models.CaseSpec{
			ID:        id,
			Prompt:    prompt,
			MaxTokens: 512,
			Expect:    models.Expectation{Contains: required},
		}
	}
	return models.SuiteSpec{
		ID:     "code-gen",
		Kind:   models.KindCode,
		Weight: 1.0,
		Cases: []models.CaseSpec{
			codeCase("code-fibonacci",
				"Write a Python function named fibonacci(n) that returns the nth Fibonacci number.",
				[]string{"def fibonacci", "return"}),
			codeCase("code-reverse-words",
				"Write a Python function reverse_words(s) that reverses the order of words in a string.",
				[]string{"def reverse_words", "return"}),
			codeCase("code-csv-sum",
				"Write a Python function sum_column(path, index) that sums one numeric column of a CSV file using the csv module.",
				[]string{"def sum_column", "import csv", "return"}),
			codeCase("code-dedupe",
				"Write a Python function dedupe(items) that removes duplicates from a list while preserving order.",
				[]string{"def dedupe", "return"}),
			codeCase("code-js-debounce",
				"Write a JavaScript function debounce(fn, ms) that returns a debounced version of fn.",
				[]string{"function debounce", "setTimeout"}),
			codeCase("code-sql-top",
				"Write a SQL query returning the 5 customers with the highest total order value from tables "+
					"customers(id, name) and orders(customer_id, total).",
				[]string{"select", "join", "group by", "order by", "limit"}),
			codeCase("code-binary-search",
				"Write a Python function binary_search(arr, target) returning the index of target or -1.",
				[]string{"def binary_search", "while", "return"}),
			codeCase("code-flatten",
				"Write a Python function flatten(nested) that flattens arbitrarily nested lists into one flat list.",
				[]string{"def flatten", "isinstance", "return"}),
		},
	}
}

const functionCatalog = "Available functions:\n" +
	"- get_weather(city, unit): current weather for a city\n" +
	"- send_email(to, subject, body): send an email\n" +
	"- create_event(title, date, time): add a calendar event\n" +
	"- search_files(query, folder): find files by content\n" +
	"- set_reminder(message, datetime): schedule a reminder\n" +
	"- convert_currency(amount, from, to): currency conversion\n" +
	"- book_meeting_room(room, start, end): reserve a room\n" +
	"- translate_text(text, target_language): translate text\n\n"

var functionLabels = []string{
	"get_weather", "send_email", "create_event", "search_files",
	"set_reminder", "convert_currency", "book_meeting_room", "translate_text",
}

func functionSelectSuite() models.SuiteSpec {
	fn := func(id, request, exact, secondary string) models.CaseSpec {
		return models.CaseSpec{
			ID: id,
			Prompt: functionCatalog + "Which single function best handles this request?\n\nRequest: " +
				request,
			InstructionPrefix: "Reply with only the function name.",
			MaxTokens:         16,
			Expect: models.Expectation{
				Exact:     exact,
				Secondary: secondary,
				Labels:    functionLabels,
			},
		}
	}
	return models.SuiteSpec{
		ID:     "function-select",
		Kind:   models.KindExact,
		Weight: 1.5,
		Cases: []models.CaseSpec{
			fn("fnsel-umbrella", "Do I need an umbrella in Oslo today?", "get_weather", ""),
			fn("fnsel-notify-team", "Let the team know the deploy is postponed until Monday.", "send_email", ""),
			fn("fnsel-dentist", "Put my dentist appointment on the calendar for the 3rd at 14:00.", "create_event", "set_reminder"),
			fn("fnsel-find-deck", "Where did I save the slide deck about onboarding?", "search_files", ""),
			fn("fnsel-medicine", "Remind me to take my medication at 9pm tonight.", "set_reminder", "create_event"),
			fn("fnsel-yen", "How much is 250 euros in Japanese yen right now?", "convert_currency", ""),
			fn("fnsel-standup-room", "Grab the small meeting room for standup tomorrow 9:00 to 9:15.", "book_meeting_room", "create_event"),
			fn("fnsel-spanish", "What is 'The invoice is attached' in Spanish?", "translate_text", ""),
		},
	}
}

func toolArgumentsSuite() models.SuiteSpec {
	args := func(id, fn, request string, expected map[string]any) models.CaseSpec {
		return models.CaseSpec{
			ID: id,
			Prompt: "Extract the arguments for the function " + fn + " from this request and " +
				"respond with a JSON object mapping argument names to values.\n\nRequest: " + request,
			InstructionPrefix: "Respond with only the JSON object.",
			MaxTokens:         256,
			Expect:            models.Expectation{Arguments: expected},
		}
	}
	return models.SuiteSpec{
		ID:     "tool-arguments",
		Kind:   models.KindArguments,
		Weight: 1.5,
		Cases: []models.CaseSpec{
			args("args-weather", "get_weather(city, unit)",
				"What's the temperature in Helsinki in celsius?",
				map[string]any{"city": "helsinki", "unit": "celsius"}),
			args("args-currency", "convert_currency(amount, from, to)",
				"Convert 250 euros to japanese yen.",
				map[string]any{"amount": 250, "from": "eur", "to": "jpy"}),
			args("args-event", "create_event(title, date, time)",
				"Schedule 'Quarterly planning' for 2026-10-05 at 09:30.",
				map[string]any{"title": "quarterly planning", "date": "2026-10-05", "time": "09:30"}),
			args("args-email", "send_email(to, subject, body)",
				"Email ops@example.com with subject 'Deploy window' saying the window moves to Friday.",
				map[string]any{"to": "ops@example.com", "subject": "deploy window"}),
			args("args-room", "book_meeting_room(room, start, end)",
				"Book room Aurora from 13:00 to 14:30.",
				map[string]any{"room": "aurora", "start": "13:00", "end": "14:30"}),
			args("args-translate", "translate_text(text, target_language)",
				"Translate 'Good morning' into French.",
				map[string]any{"text": "good morning", "target_language": "french"}),
		},
	}
}

func contextScalingSuite() models.SuiteSpec {
	scale := func(id string, scale float64, needle, question, answer string) models.CaseSpec {
		cs := needleCase(id, 0.5, needle, question, answer)
		cs.ContextScale = scale
		return cs
	}
	return models.SuiteSpec{
		ID:     "context-scaling",
		Kind:   models.KindExact,
		Weight: 1.0,
		Cases: []models.CaseSpec{
			scale("ctxscale-25", 0.25,
				"Invoice INV-2209 was settled with reference token pelican-88.",
				"What reference token settled invoice INV-2209?", "pelican-88"),
			scale("ctxscale-50", 0.5,
				"The rollback threshold for service atlas is 7 failed probes.",
				"How many failed probes trigger a rollback for service atlas?", "7"),
			scale("ctxscale-75", 0.75,
				"Warehouse 3 stores the calibration rig labeled CR-415.",
				"Which warehouse stores calibration rig CR-415?", "warehouse 3"),
			scale("ctxscale-100", 1.0,
				"The on-call handover happens daily at 17:45 local time.",
				"At what local time does the on-call handover happen?", "17:45"),
		},
	}
}

func reasoningSuite() models.SuiteSpec {
	reason := func(id, prompt, answer string, labels ...string) models.CaseSpec {
		return models.CaseSpec{
			ID: id,
			Prompt: prompt + "\n\nThink it through, then give your final answer on its own " +
				"line prefixed with ANSWER:",
			MaxTokens: 768,
			Expect: models.Expectation{
				Exact:        answer,
				AnswerPrefix: "ANSWER:",
				Labels:       labels,
			},
		}
	}
	return models.SuiteSpec{
		ID:     "reasoning",
		Kind:   models.KindExact,
		Weight: 1.5,
		Cases: []models.CaseSpec{
			reason("reason-apples",
				"A crate holds 48 apples. You remove a third, then add 10, then remove half. How many apples remain?",
				"21"),
			reason("reason-trains",
				"Two trains leave stations 300 km apart at the same time, heading toward each other at 70 km/h and 80 km/h. After how many hours do they meet?",
				"2"),
			reason("reason-age",
				"Ana is twice as old as Ben was when Ana was Ben's age. Ana is 30 and Ben is 24. How old was Ben when Ana was 24? Reply with the number.",
				"18"),
			reason("reason-weekday",
				"If the 1st of a month is a Wednesday, what day of the week is the 19th?",
				"sunday",
				"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"),
			reason("reason-probability",
				"A bag holds 3 red and 2 blue marbles. You draw two without replacement. What is the probability both are red, as a fraction in lowest terms?",
				"3/10"),
			reason("reason-sequence",
				"What is the next number in the sequence 2, 6, 12, 20, 30?",
				"42"),
			reason("reason-water",
				"A tank fills in 6 hours through pipe A and drains in 9 hours through pipe B. With both open, how many hours until the empty tank is full?",
				"18"),
			reason("reason-coins",
				"Using only 5-cent and 8-cent coins, what is the largest amount in cents that cannot be paid exactly?",
				"27"),
		},
	}
}

func instructionSuite() models.SuiteSpec {
	instr := func(id, prompt string, checks ...models.Check) models.CaseSpec {
		return models.CaseSpec{
			ID:        id,
			Prompt:    prompt,
			MaxTokens: 256,
			Expect:    models.Expectation{Checks: checks},
		}
	}
	return models.SuiteSpec{
		ID:     "instruction",
		Kind:   models.KindInstruction,
		Weight: 1.0,
		Cases: []models.CaseSpec{
			instr("instr-five-words",
				"Describe the ocean in exactly five words.",
				models.Check{Kind: models.CheckWordCount, N: 5}),
			instr("instr-three-lines",
				"Name three capital cities, one per line, with no other text.",
				models.Check{Kind: models.CheckLineCount, N: 3}),
			instr("instr-uppercase",
				"Write a one-sentence safety warning about wet floors in all uppercase letters.",
				models.Check{Kind: models.CheckUppercase}),
			instr("instr-numbered",
				"List four steps for brewing tea as a numbered list: 1. through 4.",
				models.Check{Kind: models.CheckNumberedList, N: 4}),
			instr("instr-pong",
				"Reply with exactly the word: pong",
				models.Check{Kind: models.CheckExactReply, Value: "pong"}),
			instr("instr-dice",
				"Pick a number between 2 and 12 inclusive, as you would from two dice. Reply with only the number.",
				models.Check{Kind: models.CheckIntegerRange, N: 2, Max: 12}),
			instr("instr-commas",
				"Name exactly six colors separated by commas on a single line, nothing else.",
				models.Check{Kind: models.CheckCommaItems, N: 6}),
			instr("instr-ends-period",
				"Write one sentence about autumn. It must end with a period.",
				models.Check{Kind: models.CheckEndsWith, Value: "."}),
			instr("instr-starts-dear",
				"Write the first line of a formal letter to a hiring committee. It must start with the word Dear.",
				models.Check{Kind: models.CheckStartsWith, Value: "Dear"}),
			instr("instr-iso-date",
				"Reply with today's date in ISO 8601 format (YYYY-MM-DD) and nothing else.",
				models.Check{Kind: models.CheckMatchesRegex, Value: `^\d{4}-\d{2}-\d{2}$`}),
			instr("instr-combo",
				"Answer in exactly seven words and end with an exclamation mark: why is testing useful?",
				models.Check{Kind: models.CheckWordCount, N: 7},
				models.Check{Kind: models.CheckEndsWith, Value: "!"}),
		},
	}
}

func multiTurnSuite() models.SuiteSpec {
	turns := func(id string, exact string, history ...models.Turn) models.CaseSpec {
		return models.CaseSpec{
			ID:                id,
			Turns:             history,
			InstructionPrefix: "Reply with only the requested value.",
			MaxTokens:         32,
			Expect:            models.Expectation{Exact: exact},
		}
	}
	u := func(c string) models.Turn { return models.Turn{Role: "user", Content: c} }
	a := func(c string) models.Turn { return models.Turn{Role: "assistant", Content: c} }

	return models.SuiteSpec{
		ID:     "multi-turn",
		Kind:   models.KindExact,
		Weight: 1.0,
		Cases: []models.CaseSpec{
			turns("turns-name-recall", "echo-5512",
				u("My project codename is echo-5512. Please remember it."),
				a("Got it. I'll remember the codename."),
				u("What is my project codename?")),
			turns("turns-arithmetic-chain", "35",
				u("Start with the number 12."),
				a("Okay, the number is 12."),
				u("Add 23. What is the total? Reply with only the number.")),
			turns("turns-correction", "lisbon",
				u("I'm planning a trip to Madrid."),
				a("Madrid is a great choice. What would you like to know?"),
				u("Actually, change that to Lisbon."),
				a("Understood, Lisbon it is."),
				u("Which city is my trip to? One word.")),
			turns("turns-list-growth", "4",
				u("My shopping list is: eggs, milk."),
				a("Noted: eggs and milk."),
				u("Add bread and butter."),
				a("Added. The list now has eggs, milk, bread, and butter."),
				u("How many items are on the list? Reply with only the number.")),
			turns("turns-persona-hold", "bonjour",
				u("For this conversation, answer in French when I ask for greetings."),
				a("D'accord."),
				u("How do you say hello? One word.")),
			turns("turns-reference", "412",
				u("Order A weighs 380 kg and order B weighs 412 kg."),
				a("Recorded both weights."),
				u("What does the heavier one weigh? Reply with only the number.")),
		},
	}
}

func latencySuite() models.SuiteSpec {
	ping := func(id, prompt string, maxTokens int) models.CaseSpec {
		return models.CaseSpec{
			ID:        id,
			Prompt:    prompt,
			MaxTokens: maxTokens,
			Expect:    models.Expectation{},
		}
	}
	return models.SuiteSpec{
		ID:     "latency",
		Kind:   models.KindLatency,
		Exempt: true,
		Cases: []models.CaseSpec{
			ping("latency-short", "Reply with the word ready.", 8),
			ping("latency-paragraph", "Write a paragraph about the history of shipping containers.", 256),
			ping("latency-long", "Write a detailed multi-paragraph explanation of how tides work.", 1024),
		},
	}
}
