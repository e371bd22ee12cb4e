package prompt

const contextSummary = `Context:
- File type: {{.Context.FileType}}
- Imports: {{orNone .Context.Imports}}`

var templateText = map[Operation]string{
	OpExplain: `Please explain the following {{.Language}} code in detail:

{{fence .Language .Code}}

Context:
- File type: {{.Context.FileType}}
- Imports: {{orNone .Context.Imports}}
- Functions in file: {{len .Context.Functions}}
- Classes in file: {{len .Context.Classes}}

Please provide:
1. A clear explanation of what this code does
2. How it works step by step
3. Any important concepts or patterns used
4. Potential improvements or considerations

Make your explanation beginner-friendly but comprehensive.`,

	OpRefactor: `Please refactor the following {{.Language}} code to {{lower .RefactorType}}:

{{fence .Language .Code}}

Context:
- File type: {{.Context.FileType}}
- Imports: {{orNone .Context.Imports}}
- Functions in file: {{orNone .Context.Functions}}
- Classes in file: {{orNone .Context.Classes}}

Refactoring requirements:
- Focus on: {{.RefactorType}}
- Maintain the same functionality
- Follow {{.Language}} best practices
- Make the code more readable and maintainable

Please provide only the refactored code without explanations, as I will apply it directly to the editor.`,

	OpGenerate: `Please generate {{.Language}} code for the following requirement:

Description: {{.Description}}

Requirements:
- Use {{.Language}} best practices
- Include proper error handling where appropriate
- Add comments to explain complex logic
- Make the code readable and maintainable
- Follow {{.Language}} naming conventions

Please provide only the code without explanations, as I will insert it directly into the editor.`,

	OpFix: `Please fix the following {{.Language}} code issues:

{{fence .Language .Code}}

` + contextSummary + `

Issues found:
{{issues .Issues}}

Please provide the corrected code that:
1. Fixes all identified issues
2. Maintains the original functionality
3. Follows {{.Language}} best practices
4. Improves code quality and readability

Please provide only the fixed code without explanations, as I will apply it directly to the editor.`,

	OpOptimize: `Please optimize the following {{.Language}} code for better performance:

{{fence .Language .Code}}

` + contextSummary + `

Optimization requirements:
- Improve performance (speed, memory usage)
- Maintain the same functionality
- Follow {{.Language}} best practices
- Consider algorithmic improvements
- Optimize data structures if applicable

Please provide the optimized code with brief comments explaining the key optimizations made.`,

	OpDocument: `Please add comprehensive documentation to the following {{.Language}} code:

{{fence .Language .Code}}

` + contextSummary + `

Documentation requirements:
- Add function/class docstrings in {{.Language}} standard format
- Include parameter descriptions and return types
- Add inline comments for complex logic
- Explain the purpose and usage of the code
- Follow {{.Language}} documentation conventions

Please provide the documented code with clear, professional documentation.`,

	OpTest: `Please generate comprehensive tests for the following {{.Language}} code:

{{fence .Language .Code}}

` + contextSummary + `

Testing requirements:
- Generate unit tests for all functions/classes
- Include edge cases and error conditions
- Use appropriate {{.Language}} testing framework
- Ensure good test coverage
- Follow testing best practices

Please provide the test code with clear test descriptions and assertions.`,

	OpSecurity: `Please review and improve the security of the following {{.Language}} code:

{{fence .Language .Code}}

` + contextSummary + `

Security review requirements:
- Identify potential security vulnerabilities
- Suggest security improvements
- Implement input validation where needed
- Follow {{.Language}} security best practices
- Consider common attack vectors

Please provide the security-improved code with explanations of the security measures implemented.`,

	OpMigrate: `Please migrate the following {{.Language}} code to {{.TargetLanguage}}:

{{fence .Language .Code}}

Migration requirements:
- Maintain the same functionality
- Follow {{.TargetLanguage}} best practices and conventions
- Use appropriate {{.TargetLanguage}} libraries and frameworks
- Handle language-specific features appropriately
- Ensure the migrated code is idiomatic {{.TargetLanguage}}

Please provide the migrated code with brief explanations of key changes made during the migration.`,

	OpReview: `Please perform a comprehensive code review of the following {{.Language}} code:

{{fence .Language .Code}}

` + contextSummary + `

Review requirements:
- Analyze code quality and structure
- Identify potential bugs and issues
- Suggest improvements for readability and maintainability
- Check for performance optimizations
- Review security considerations
- Assess adherence to {{.Language}} best practices

Please provide a detailed review with specific recommendations and examples.`,
}
