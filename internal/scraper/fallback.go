package scraper

import (
	"fmt"
	"strings"
	"time"

	"github.com/heliohq/mpc/internal/domain"
)

// Synthetic posting templates used when a provider cannot run. They keep
// the pipeline exercisable without credentials and are tagged with the
// provider's fallback source so downstream consumers can tell them apart.
var (
	fallbackCompanies = []string{
		"TechBrasil Soluções",
		"Inova Digital",
		"DataCore Consultoria",
		"NuvemSoft",
		"Conecta Sistemas",
		"Alfa Tecnologia",
		"Vetor Software",
		"Prisma TI",
	}

	fallbackSeniorities = []string{"Júnior", "Pleno", "Sênior", "Especialista"}

	fallbackDescriptions = []string{
		"Atuar no desenvolvimento e manutenção de aplicações, participando de todo o ciclo de vida do software. Requisitos: experiência com metodologias ágeis (Scrum, Kanban), versionamento com Git, conhecimento em SQL e APIs REST. Desejável: Docker, CI/CD, cloud (AWS ou GCP). Boa comunicação e trabalho em equipe.",
		"Responsável por projetar, implementar e testar novas funcionalidades. Requisitos: sólidos conhecimentos em estruturas de dados, bancos de dados relacionais (PostgreSQL, MySQL), testes automatizados. Diferenciais: Kubernetes, mensageria (Kafka, RabbitMQ), observabilidade. Perfil colaborativo e proativo.",
		"Integrar time multidisciplinar focado em produtos digitais. Requisitos: inglês técnico, Git, APIs REST, experiência com code review. Desejável: TypeScript, React, microsserviços, AWS. Valorizamos aprendizado contínuo, comunicação clara e resolução de problemas.",
		"Vaga para atuação em projetos de grande escala. Requisitos: domínio de SQL e NoSQL, arquitetura de sistemas distribuídos, Docker. Diferenciais: certificação AWS, Terraform, Python para automação. Buscamos profissional com pensamento analítico e liderança técnica.",
	}
)

// SyntheticPostings fabricates limit postings for the provider when the real
// scraper cannot run. The source is tagged "<provider>_fallback".
func SyntheticPostings(provider string, q domain.JobQuery, limit int) []domain.Posting {
	if limit <= 0 {
		return nil
	}

	source := provider + domain.FallbackSuffix
	location := q.Location
	if strings.TrimSpace(location) == "" {
		location = "Brasil"
	}

	now := time.Now().UTC()
	out := make([]domain.Posting, 0, limit)
	for i := 0; i < limit; i++ {
		seniority := fallbackSeniorities[i%len(fallbackSeniorities)]
		p := domain.Posting{
			Title:       fmt.Sprintf("%s %s", q.Role, seniority),
			Company:     fallbackCompanies[i%len(fallbackCompanies)],
			Location:    location,
			Description: fallbackDescriptions[i%len(fallbackDescriptions)],
			Source:      source,
			Seniority:   seniority,
			CollectedAt: now,
		}
		p.ID = domain.PostingID(source, fmt.Sprintf("%s-%d", strings.ToLower(strings.ReplaceAll(q.Role, " ", "-")), i))
		p.Normalize()
		out = append(out, p)
	}
	return out
}
