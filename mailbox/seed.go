package mailbox

import "klar/models"

// SeedEmails returns a fresh copy of the mock collection every mailbox
// starts with.
func SeedEmails() []models.Email {
	return []models.Email{
		{
			ID:          1,
			From:        "Marie Dubois",
			Subject:     "Réunion de demain",
			Preview:     "Bonjour, je voulais confirmer notre réunion de demain à 14h. Pouvez-vous apporter les documents dont nous avons parlé ?",
			Time:        "09:00",
			DaysInInbox: 0,
			IsStarred:   true,
		},
		{
			ID:          2,
			From:        "Thomas Laurent",
			Subject:     "Proposition de projet",
			Preview:     "Suite à notre conversation, voici la proposition détaillée pour le nouveau projet. J'attends vos retours.",
			Time:        "08:30",
			DaysInInbox: 0,
			HasShield:   true,
		},
		{
			ID:          3,
			From:        "Newsletter KLAR",
			Subject:     "Nouvelles fonctionnalités disponibles",
			Preview:     "Découvrez les dernières mises à jour de KLAR : Zen Mode amélioré, nouvelles langues pour Immersion Linguistique...",
			Time:        "Hier",
			DaysInInbox: 1,
			IsRead:      true,
		},
		{
			ID:          4,
			From:        "Sophie Martin",
			Subject:     "Feedback sur la présentation",
			Preview:     "Excellente présentation aujourd'hui ! Quelques suggestions pour la prochaine fois...",
			Time:        "Hier",
			DaysInInbox: 1,
			IsRead:      true,
			IsStarred:   true,
		},
		{
			ID:          5,
			From:        "Jean Dupont",
			Subject:     "Budget Q4 2025",
			Preview:     "Voici le récapitulatif du budget pour le dernier trimestre. Merci de valider avant vendredi.",
			Time:        "2 jours",
			DaysInInbox: 2,
			IsRead:      true,
		},
		{
			ID:          6,
			From:        "Ancien Client",
			Subject:     "Opportunité de collaboration",
			Preview:     "Cela fait un moment ! J'ai une proposition intéressante à vous soumettre concernant un nouveau projet.",
			Time:        "25 jours",
			DaysInInbox: 25,
		},
		{
			ID:          7,
			From:        "Service RH",
			Subject:     "Documents administratifs",
			Preview:     "Merci de compléter les documents ci-joints pour finaliser votre dossier.",
			Time:        "27 jours",
			DaysInInbox: 27,
		},
	}
}
