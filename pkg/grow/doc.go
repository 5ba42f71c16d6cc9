// Package grow integrates with the Grow payment gateway: hosted
// recurring payment pages, token charges and webhook notifications.
//
// The gateway speaks form-urlencoded requests and answers with a JSON
// envelope where status "1" means success. Declined or rejected calls
// are a normal business outcome and come back as Result{Success:
// false} with the gateway's message; Go errors are reserved for
// configuration and transport problems.
//
// # Usage
//
//	cfg, _ := config.Load[grow.Config]()
//	client, err := grow.NewClient(cfg, catalog)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := client.CreateRecurringPayment(ctx, tier.TierMomentum,
//		tier.PeriodMonthly, userID, grow.CallbackURLs{
//			NotifyURL:  "https://app.example.com/webhooks/grow",
//			SuccessURL: "https://app.example.com/billing/success",
//			CancelURL:  "https://app.example.com/billing/cancel",
//		}, "user@example.com", "Dana Levi")
//	if err != nil {
//		// configuration problem, nothing was sent
//	}
//	if !res.Success {
//		// gateway declined: res.Error holds the message
//	}
//	http.Redirect(w, r, res.RedirectURL, http.StatusSeeOther)
//
// Webhook notifications are parsed with ParseWebhookPayload and
// authenticated with VerifyWebhook, which compares the shared secret
// in constant time.
package grow
