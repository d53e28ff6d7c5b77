package research

const generateQueriesPrompt = `Generate 2-3 specific search queries for researching this topic.

IMPORTANT: Return ONLY a valid JSON array of strings. Example:
["query 1", "query 2", "query 3"]

Do not include any other text, markdown, or formatting.`

const extractFindingsPrompt = `You are a research analyst. Extract 5-7 key findings from the search results.

IMPORTANT: Return ONLY a valid JSON array of strings. Example:
["Finding 1", "Finding 2", "Finding 3"]

Do not include any other text, markdown, or formatting.`

const generateSummaryPrompt = `Create a comprehensive summary based on these findings.
Be clear, informative, and well-structured.`

const naiveSystemPrompt = `You are a research assistant. Your job is to:
1. Search for information about the given topic
2. Extract key findings from search results
3. Generate a comprehensive summary

Be thorough and cite your sources.`

const naiveUserPrompt = "Research the following topic and provide a comprehensive summary with key findings: %s"
