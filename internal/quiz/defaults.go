package quiz

var defaultQuestions = []Question{
	{"1. My name ___ John.", []string{"a) are", "b) am", "c) is"}},
	{"2. Where ___ you from?", []string{"a) are", "b) is", "c) be"}},
	{"3. I usually ___ breakfast at 8 o’clock.", []string{"a) have", "b) has", "c) having"}},
	{"4. She can ___ the guitar.", []string{"a) play", "b) playing", "c) plays"}},
	{"5. There ___ any apples on the table.", []string{"a) isn’t", "b) aren’t", "c) don’t"}},
	{"6. I go to school ___ bus.", []string{"a) in", "b) on", "c) by"}},
	{"7. Where ___ they live?", []string{"a) do", "b) does", "c) is"}},
	{"8. There is ___ apple on the table.", []string{"a) an", "b) a", "c) the"}},
	{"9. My father ___ in a bank.", []string{"a) works", "b) work", "c) working"}},
	{"10. I have lived here ___ five years.", []string{"a) since", "b) for", "c) from"}},
	{"11. He doesn’t like coffee, and I don’t like it ___.", []string{"a) too", "b) either", "c) also"}},
	{"12. If it ___ tomorrow, we will stay at home.", []string{"a) rains", "b) will rain", "c) rain"}},
	{"13. I was very tired because I ___ all day.", []string{"a) worked", "b) have worked", "c) had worked"}},
	{"14. This movie is ___ interesting than the last one.", []string{"a) most", "b) more", "c) much"}},
	{"15. We have to go now, there isn’t ___ time left.", []string{"a) much", "b) many", "c) few"}},
	{"16. I was tired, so I ___ to bed early.", []string{"a) go", "b) went", "c) going"}},
	{"17. He ___ speak English very well.", []string{"a) cans", "b) can", "c) can to"}},
	{"18. I’m ___ than my brother.", []string{"a) taller", "b) the tallest", "c) more tall"}},
	{"19. She asked me if I ___ help her with her homework.", []string{"a) can", "b) could", "c) will"}},
	{"20. I wish I ___ more time to travel.", []string{"a) have", "b) had", "c) would have"}},
	{"21. He’s used to ___ up early every morning.", []string{"a) get", "b) getting", "c) got"}},
	{"22. By the time we arrived, the film ___.", []string{"a) already started", "b) had already started", "c) has already started"}},
	{"23. If I ___ you, I’d take that job.", []string{"a) am", "b) was", "c) were"}},
	{"24. You ___ smoke here - it’s not allowed.", []string{"a) don’t have to", "b) mustn’t", "c) can"}},
	{"25. She said she ___ call me later.", []string{"a) will", "b) would", "c) can"}},
}

var defaultKey = map[int]string{
	1: "c", 2: "a", 3: "a", 4: "a", 5: "b",
	6: "c", 7: "a", 8: "a", 9: "a", 10: "b",
	11: "b", 12: "a", 13: "b", 14: "b", 15: "a",
	16: "b", 17: "b", 18: "a", 19: "b", 20: "b",
	21: "b", 22: "b", 23: "c", 24: "b", 25: "b",
}

var defaultMeta = map[int]Meta{
	1: {
		Topic:       "to be / subject-verb agreement",
		Explanation: "Use 'is' with a name and with he/she/it.",
		Link:        "https://learnenglish.britishcouncil.org/grammar/intermediate-to-upper-intermediate/to-be",
	},
	2: {
		Topic:       "questions with to be",
		Explanation: "Questions with 'you' take 'are'.",
		Link:        "https://www.perfect-english-grammar.com/questions-with-to-be.html",
	},
	3: {
		Topic:       "present simple: verb forms",
		Explanation: "With 'I' we say 'have breakfast'.",
		Link:        "https://learnenglish.britishcouncil.org/grammar/english-grammar-reference/present-simple",
	},
	4: {
		Topic:       "modal + base verb",
		Explanation: "After 'can' comes the infinitive without 'to'.",
		Link:        "https://www.englishpage.com/modals/modalhelp.html",
	},
	5: {
		Topic:       "there is/there are",
		Explanation: "For plurals: 'There aren't any apples.'",
		Link:        "https://www.perfect-english-grammar.com/there-is-there-are.html",
	},
}

// DefaultBank returns the built-in 25-question placement test
func DefaultBank() *Bank {
	b, err := NewBank(defaultQuestions, defaultKey, defaultMeta)
	if err != nil {
		panic(err)
	}
	return b
}
