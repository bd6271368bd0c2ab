package templates

const brandProposalTmpl = `
<div>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		Hi {{BrandName}},
	</p>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		{{CreatorName}} has shared the collaboration terms for your deal. You can respond using any of the links below - no account needed:
	</p>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		<a href="{{AcceptURL}}">Accept the terms</a><br/>
		<a href="{{CounterURL}}">Propose different terms</a><br/>
		<a href="{{DeclineURL}}">Decline</a>
	</p>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		These links are unique to this deal and stop working once you have responded.
	</p>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		All the best,<br/>
		~ The NoticeBazaar Team<br/>
	</p>
</div>
`

const brandCounterNotifyTmpl = `
<div>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		Hi {{CreatorName}},
	</p>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		{{BrandName}} has proposed revised terms for your deal:
	</p>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		Budget: {{Budget}}<br/>
		Deliverables: {{Deliverables}}<br/>
		{{#Notes}}Notes: {{Notes}}{{/Notes}}
	</p>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		Review them from your deal page to continue the conversation.
	</p>
</div>
`

const declineNotifyTmpl = `
<div>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		Hi {{CreatorName}},
	</p>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		{{BrandName}} has declined the collaboration.{{#Reason}} Their note: {{Reason}}{{/Reason}}
	</p>
</div>
`

const contractReadyTmpl = `
<div>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		Hi {{Name}},
	</p>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		The collaboration agreement between {{BrandName}} and {{CreatorName}} is ready.
	</p>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		<a href="{{ContractURL}}">View the agreement</a><br/>
		<a href="{{SignURL}}">Review and sign</a>
	</p>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		You will be asked to verify your email with a one-time code before signing.
	</p>
</div>
`

const reminderTmpl = `
<div>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		Hi {{BrandName}},
	</p>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		Just a gentle reminder that {{CreatorName}} is waiting on your response for the collaboration below:
	</p>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		<a href="{{AcceptURL}}">Accept the terms</a><br/>
		<a href="{{CounterURL}}">Propose different terms</a><br/>
		<a href="{{DeclineURL}}">Decline</a>
	</p>
</div>
`

var (
	BrandProposalEmail      = MustacheMust(brandProposalTmpl)
	BrandCounterNotifyEmail = MustacheMust(brandCounterNotifyTmpl)
	DeclineNotifyEmail      = MustacheMust(declineNotifyTmpl)
	ContractReadyEmail      = MustacheMust(contractReadyTmpl)
	ReminderEmail           = MustacheMust(reminderTmpl)
)
