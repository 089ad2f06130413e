package prompts

import (
	"fmt"
	"strings"
)

// ============================================================================
// Shared Lexicons
// ============================================================================

// TechTerms is the shared technology lexicon. It feeds the specificity score
// of ranked keywords and the regex extractor used when no model responds.
var TechTerms = []string{
	"python", "java", "javascript", "typescript", "go", "golang", "c#", "c++",
	"ruby", "php", "kotlin", "swift", "scala", "rust", "sql", "nosql",
	"react", "angular", "vue", "node.js", "nodejs", "next.js", "spring",
	"django", "flask", "fastapi", ".net", "rails", "laravel",
	"aws", "azure", "gcp", "google cloud", "docker", "kubernetes", "terraform",
	"ansible", "jenkins", "github actions", "ci/cd",
	"postgresql", "mysql", "mongodb", "redis", "elasticsearch", "oracle",
	"sql server", "dynamodb", "cassandra", "kafka", "rabbitmq", "spark",
	"hadoop", "airflow", "dbt",
	"git", "linux", "rest", "graphql", "grpc", "microsserviços",
	"machine learning", "deep learning", "tensorflow", "pytorch",
	"scrum", "kanban", "devops", "sre", "tdd",
	"sap", "salesforce", "selenium", "cypress",
}

// Certifications is the lexicon of certification keywords. Checked before
// the technical lexicon so "aws certified" lands in the right category.
var Certifications = []string{
	"aws certified", "azure certified", "gcp certified", "pmp", "csm",
	"itil", "cisa", "cissp", "ceh", "comptia", "ocjp", "ckad", "cka",
	"scrum master certificado", "certificação",
}

// BehavioralTerms is the lexicon of soft-skill keywords in the wording
// Brazilian postings actually use.
var BehavioralTerms = []string{
	"comunicação", "trabalho em equipe", "liderança", "proatividade",
	"resolução de problemas", "pensamento analítico", "organização",
	"adaptabilidade", "colaboração", "autonomia", "criatividade",
	"aprendizado contínuo", "gestão de tempo", "negociação",
	"inglês", "espanhol",
}

// ToolTerms lists terms categorized as tools rather than core technologies.
// Kept disjoint from TechTerms so a term categorizes the same way every run.
var ToolTerms = []string{
	"jira", "confluence", "slack", "trello", "figma", "postman",
	"excel", "power bi", "tableau", "looker", "github", "gitlab",
	"vs code", "intellij", "notion",
}

// ============================================================================
// Keyword Extraction Prompt
// ============================================================================

// KeywordExtractionHeader opens every extraction prompt. The model answers
// in JSON with the exact key expected by the merger.
const KeywordExtractionHeader = `Você é um especialista em recrutamento e análise de vagas de emprego no Brasil.

Analise as vagas de emprego abaixo para o cargo de "%s"%s e identifique as palavras-chave mais importantes que aparecem nos requisitos.

Para cada palavra-chave, classifique a categoria como uma destas: "technical" (linguagens, frameworks, bancos de dados, cloud), "tool" (ferramentas de trabalho), "behavioral" (competências comportamentais), "certification" (certificações) ou "other".

Responda APENAS com JSON válido, sem texto adicional, neste formato exato:
{
  "top_10_palavras_chave": [
    {"termo": "python", "frequencia": 5, "categoria": "technical"}
  ]
}

Considere a frequência como o número de vagas em que o termo aparece.

VAGAS:
`

// JSONOnlyReinforcement is appended on the single reparse retry when the
// first answer was not valid JSON.
const JSONOnlyReinforcement = `

IMPORTANTE: responda SOMENTE com o objeto JSON. Não use blocos de código markdown, não adicione explicações ou texto fora do JSON.`

// PostingBlock renders one posting section of the prompt. Index is 1-based
// within the batch.
func PostingBlock(index int, title, company, description string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- VAGA %d ---\n", index)
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(company)
	b.WriteString("\n")
	b.WriteString(description)
	b.WriteString("\n")
	fmt.Fprintf(&b, "--- FIM VAGA %d ---\n", index)
	return b.String()
}

// ExtractionPrompt renders the full prompt for one batch of postings.
// areaContext is optional and narrows the role, e.g. "dados".
func ExtractionPrompt(role, areaContext string, blocks []string) string {
	area := ""
	if strings.TrimSpace(areaContext) != "" {
		area = fmt.Sprintf(" na área de %s", strings.TrimSpace(areaContext))
	}

	var b strings.Builder
	fmt.Fprintf(&b, KeywordExtractionHeader, role, area)
	for _, block := range blocks {
		b.WriteString("\n")
		b.WriteString(block)
	}
	return b.String()
}
