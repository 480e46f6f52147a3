package orchestra

// SampleOrchestraXML is a small, self-contained Orchestra repository used
// by this package's own tests and reused by pkg/sbeschema and pkg/sbe to
// exercise the compiler and codec against a shared, realistic fixture: a
// SecurityDefinition message (template id 37) with a repeating group of
// security alternate ids, and a NewOrderSingle message (template id 14)
// with a repeating group of parties.
const SampleOrchestraXML = `<?xml version="1.0" encoding="UTF-8"?>
<fixr:repository xmlns:fixr="http://fixprotocol.io/2020/orchestra/repository">
  <fixr:fields>
    <fixr:field id="11" name="ClOrdID" type="String"/>
    <fixr:field id="15" name="Currency" type="Currency"/>
    <fixr:field id="55" name="Symbol" type="String"/>
    <fixr:field id="223" name="CouponRate" type="Price"/>
    <fixr:field id="447" name="PartyIDSource" type="char"/>
    <fixr:field id="448" name="PartyID" type="String"/>
    <fixr:field id="452" name="PartyRole" type="int"/>
    <fixr:field id="453" name="NoPartyIDs" type="NumInGroup"/>
    <fixr:field id="454" name="NoSecurityAltID" type="NumInGroup"/>
    <fixr:field id="455" name="SecurityAltID" type="String"/>
  </fixr:fields>
  <fixr:codeSets>
  </fixr:codeSets>
  <fixr:components>
  </fixr:components>
  <fixr:groups>
    <fixr:group id="9453" name="PartiesGroup" numInGroupId="453">
      <fixr:fieldRef id="448" presence="required"/>
      <fixr:fieldRef id="447" presence="required"/>
      <fixr:fieldRef id="452" presence="required"/>
    </fixr:group>
    <fixr:group id="9454" name="SecurityAltIDGroup" numInGroupId="454">
      <fixr:fieldRef id="455" presence="required"/>
    </fixr:group>
  </fixr:groups>
  <fixr:messages>
    <fixr:message id="37" name="SecurityDefinition" msgType="d">
      <fixr:structure>
        <fixr:fieldRef id="55" presence="required"/>
        <fixr:fieldRef id="223" presence="optional"/>
        <fixr:fieldRef id="15" presence="optional"/>
        <fixr:groupRef id="9454" presence="optional"/>
      </fixr:structure>
    </fixr:message>
    <fixr:message id="14" name="NewOrderSingle" msgType="D">
      <fixr:structure>
        <fixr:fieldRef id="11" presence="required"/>
        <fixr:groupRef id="9453" presence="optional"/>
      </fixr:structure>
    </fixr:message>
  </fixr:messages>
</fixr:repository>
`
