package validation

import (
	"fmt"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/weaverhq/weaver/internal/dto"
)

// frMessages holds the French application messages, keyed by their English
// text. English entries translate to themselves.
var frMessages = map[string]string{
	dto.MsgForecastDateRequired:        "La date de la prévision doit être indiquée.",
	dto.MsgForecastTemperatureRequired: "La température de la prévision doit être indiquée.",
	dto.MsgForecastTemperatureRange:    "La température de la prévision doit être comprise entre -100 et 100.",
	dto.MsgForecastIDsRequired:         "Au moins un identifiant de prévision doit être fourni.",
	dto.MsgUserIDsRequired:             "Au moins un identifiant d'utilisateur doit être fourni.",

	dto.MsgEmailRequired:       "L'adresse e-mail doit être indiquée.",
	dto.MsgEmailInvalid:        "L'adresse e-mail n'est pas valide.",
	dto.MsgEmailTaken:          "L'adresse e-mail est déjà utilisée.",
	dto.MsgPasswordRequired:    "Le mot de passe doit être indiqué.",
	dto.MsgPasswordPolicy:      "Le mot de passe doit contenir au moins 6 caractères, dont un chiffre, une minuscule, une majuscule et un caractère non alphanumérique.",
	dto.MsgOldPasswordRequired: "L'ancien mot de passe est requis pour en définir un nouveau.",
	dto.MsgOldPasswordInvalid:  "L'ancien mot de passe est incorrect.",
	dto.MsgInvalidToken:        "Le jeton est invalide ou a expiré.",
	dto.MsgInvalidTwoFactor:    "Le code d'authentification à deux facteurs est invalide.",
	dto.MsgTwoFactorNoKey:      "L'authentification à deux facteurs nécessite d'abord la configuration d'une clé partagée.",

	dto.MsgCultureRequired:    "La culture est requise",
	dto.MsgCultureUnsupported: "Culture non prise en charge",
	dto.MsgInvalidBody:        "Le corps de la requête n'est pas un JSON valide.",

	dto.MsgUnauthenticated: "Une authentification est requise pour accéder à cette ressource.",
	dto.MsgForbidden:       "Vous n'avez pas l'autorisation d'accéder à cette ressource.",
	dto.MsgNotFound:        "La ressource demandée est introuvable.",
	dto.MsgTooManyRequests: "Trop de requêtes. Veuillez réessayer plus tard.",
}

// catalog resolves application messages outside of struct validation.
var catalog = mustCatalog()

func mustCatalog() *ut.UniversalTranslator {
	english := en.New()
	uni := ut.New(english, english, fr.New())
	if err := addMessages(uni); err != nil {
		panic(err)
	}
	return uni
}

// addMessages registers the application messages on the en and fr
// translators of uni.
func addMessages(uni *ut.UniversalTranslator) error {
	enTrans, _ := uni.GetTranslator("en")
	frTrans, _ := uni.GetTranslator("fr")
	for key, text := range frMessages {
		if err := enTrans.Add(key, key, false); err != nil {
			return fmt.Errorf("add message %q: %w", key, err)
		}
		if err := frTrans.Add(key, text, false); err != nil {
			return fmt.Errorf("add fr message %q: %w", key, err)
		}
	}
	return nil
}

// lookup renders key with trans, or returns key itself when trans has no
// entry for it.
func lookup(trans ut.Translator, key string) string {
	text, err := trans.T(key)
	if err != nil || text == "" {
		return key
	}
	return text
}

// Translate renders an English message in lang, falling back to the English
// text when no translation exists.
func Translate(lang, msg string) string {
	trans, found := catalog.GetTranslator(lang)
	if !found {
		return msg
	}
	return lookup(trans, msg)
}

// TranslateErrors renders every message of a field error map in lang.
func TranslateErrors(lang string, errs map[string][]string) map[string][]string {
	out := make(map[string][]string, len(errs))
	for field, msgs := range errs {
		translated := make([]string, len(msgs))
		for i, m := range msgs {
			translated[i] = Translate(lang, m)
		}
		out[field] = translated
	}
	return out
}
