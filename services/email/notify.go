package emailsvc

import (
	"net/mail"

	"github.com/trezcool/edupay/core"
	"github.com/trezcool/edupay/core/form"
)

// DemoRequestNotifier emails the sales team every demo request that went through.
func DemoRequestNotifier(svc core.EmailService, salesEmail mail.Address) form.Hook {
	return func(kind form.Kind, values form.Values, err error) {
		if kind != form.KindDemoRequest || err != nil {
			return
		}
		req := form.DemoRequestOf(values)
		replyTo := mail.Address{Name: req.Name, Address: req.Email}
		svc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{salesEmail},
			Cc:           []mail.Address{replyTo},
			Subject:      "Demo request from " + req.School,
			TemplateName: "demo_request",
			TemplateData: req,
		})
	}
}
