package templates

const otpTmpl = `
<div>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		Hi {{Name}},
	</p>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		Your verification code for signing the {{BrandName}} x {{CreatorName}} agreement is:
	</p>
	<p style="font-size:24px; color:#000000; margin:0 0 12px 0; letter-spacing:4px;">
		<b>{{Code}}</b>
	</p>
	<p style="font-size:14px; color:#000000; margin:0 0 12px 0;">
		The code expires in 10 minutes. If you did not request it, you can ignore this email; nothing gets signed without it.
	</p>
</div>
`

var OtpEmail = MustacheMust(otpTmpl)
