package templates

const contractDocTmpl = `<!DOCTYPE html>
<html>
	<head>
		<style>
			body {
				background-color: #fff;
				margin: 0px;
				font-family: Georgia, serif;
				color: #000;
			}
			.main {
				width: 684px;
				margin: 0px auto;
				padding: 30px;
			}
			h1 {
				font-size: 22px;
				text-align: center;
			}
			h2 {
				font-size: 15px;
				margin: 18px 0 6px 0;
				border-bottom: 1px #cecece solid;
			}
			p, li {
				font-size: 13px;
				line-height: 1.5;
			}
			.meta {
				font-size: 12px;
				color: #848e92;
				text-align: center;
			}
		</style>
	</head>
	<body>
		<div class="main">
			<h1>Collaboration Agreement</h1>
			<p class="meta">Deal reference: {{DealId}} &middot; Generated {{GeneratedDate}}</p>

			<p>This agreement is entered into between <b>{{BrandName}}</b> ("the Brand") and <b>{{CreatorName}}</b> ("the Creator") for a {{CollabType}} collaboration.</p>

			<h2>1. Deliverables</h2>
			<ul>
			{{#Deliverables}}
				<li>{{.}}</li>
			{{/Deliverables}}
			</ul>

			{{#HasAmount}}
			<h2>2. Compensation</h2>
			<p>The Brand shall pay the Creator {{Amount}} via {{PaymentMethod}} within {{PaymentTimelineDays}} days of content delivery.</p>
			{{/HasAmount}}
			{{#HasBarter}}
			<h2>2. Product Compensation</h2>
			<p>The Brand shall provide: {{BarterDescription}} (approximate value {{BarterValue}}).</p>
			{{/HasBarter}}

			<h2>3. Usage Rights</h2>
			<p>{{UsageType}} usage on {{UsagePlatforms}} for {{UsageDurationMonths}} months. Paid amplification: {{PaidAds}}. Whitelisting: {{Whitelisting}}.</p>

			{{#ExclusivityEnabled}}
			<h2>4. Exclusivity</h2>
			<p>The Creator shall not collaborate with competing brands in the {{ExclusivityCategory}} category for {{ExclusivityDurationMonths}} months.</p>
			{{/ExclusivityEnabled}}

			{{#HasAdditionalTerms}}
			<h2>Additional Terms</h2>
			<ul>
			{{#AdditionalTerms}}
				<li>{{.}}</li>
			{{/AdditionalTerms}}
			</ul>
			{{/HasAdditionalTerms}}

			{{#HasDelivery}}
			<h2>Product Delivery</h2>
			<p>Ship to: {{DeliveryName}}, {{DeliveryAddress}}. Contact: {{DeliveryPhone}}.</p>
			{{/HasDelivery}}

			<h2>Termination</h2>
			<p>Either party may terminate with {{TerminationNoticeDays}} days written notice. Disputes fall under the jurisdiction of {{Jurisdiction}}.</p>
		</div>
	</body>
</html>
`

var ContractDoc = MustacheMust(contractDocTmpl)
